package core

import (
	"fmt"
	"strings"
)

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

const (
	TicketOpen       TicketStatus = "Open"
	TicketPending    TicketStatus = "Pending"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
	TicketClosed     TicketStatus = "Closed"
)

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"
)

type (
	OrderStatus    string
	TicketStatus   string
	TicketPriority string

	// Transitions maps each status to the statuses it may move to.
	Transitions[S comparable] map[S][]S
)

// Allows reports whether the table contains from -> to.
func (t Transitions[S]) Allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// permissive builds a table where every status may move to every status,
// itself included.
func permissive[S comparable](all []S) Transitions[S] {
	t := make(Transitions[S], len(all))
	for _, from := range all {
		t[from] = append([]S(nil), all...)
	}
	return t
}

// OrderStatuses returns all order statuses in workflow order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}
}

// TicketStatuses returns all ticket statuses in workflow order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketOpen, TicketPending, TicketInProgress, TicketResolved, TicketClosed}
}

// TicketPriorities returns all priorities from lowest to highest.
func TicketPriorities() []TicketPriority {
	return []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// The dashboard lets operators pick any status from a dropdown, so both tables
// are permissive. They are kept explicit so a stricter workflow only has to
// change the table.
var (
	OrderTransitions  = permissive(OrderStatuses())
	TicketTransitions = permissive(TicketStatuses())
)

// ParseOrderStatus matches s case-insensitively against the order statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses() {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: order status %q", ErrUnknownStatus, s)
}

// ParseTicketStatus matches s case-insensitively; "in_progress" is accepted too.
func ParseTicketStatus(s string) (TicketStatus, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	for _, st := range TicketStatuses() {
		if strings.EqualFold(norm, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: ticket status %q", ErrUnknownStatus, s)
}

// ParseTicketPriority matches s case-insensitively. Empty input means Low.
func ParseTicketPriority(s string) (TicketPriority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityLow, nil
	}
	for _, p := range TicketPriorities() {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// CheckOrderTransition validates a status change for order id.
func CheckOrderTransition(id string, from, to OrderStatus) error {
	if !OrderTransitions.Allows(from, to) {
		return &TransitionError{Kind: "order", ID: id, From: string(from), To: string(to)}
	}
	return nil
}

// CheckTicketTransition validates a status change for ticket id.
func CheckTicketTransition(id string, from, to TicketStatus) error {
	if !TicketTransitions.Allows(from, to) {
		return &TransitionError{Kind: "ticket", ID: id, From: string(from), To: string(to)}
	}
	return nil
}
