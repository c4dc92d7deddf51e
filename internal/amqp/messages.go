package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kinds of entity whose status changes are announced.
const (
	KindOrder  = "order"
	KindTicket = "ticket"
)

// StatusChangedMessage announces that an order or ticket moved between
// statuses. The worker reloads the state itself; the message only says
// what changed.
type StatusChangedMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStatusChangedMessage stamps a message with the current time.
func NewStatusChangedMessage(kind, id, from, to string) *StatusChangedMessage {
	return &StatusChangedMessage{
		Kind:      kind,
		ID:        id,
		From:      from,
		To:        to,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatusChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatusChangedMessageFromJSON decodes and checks a message body.
func StatusChangedMessageFromJSON(data []byte) (*StatusChangedMessage, error) {
	var msg StatusChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindOrder && msg.Kind != KindTicket {
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message without id")
	}
	return &msg, nil
}
