package core

import (
	"strings"
	"time"
)

type (
	// Ticket is a support request raised by a customer or operator.
	Ticket struct {
		ID        string         `json:"id"`
		Subject   string         `json:"subject"`
		Message   string         `json:"message"`
		Category  string         `json:"category,omitempty"`
		Priority  TicketPriority `json:"priority"`
		Status    TicketStatus   `json:"status"`
		Comments  []Comment      `json:"comments"`
		CreatedBy string         `json:"createdBy"`
		CreatedAt time.Time      `json:"createdAt"`
	}

	// Comment is one reply on a ticket thread.
	Comment struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		Author    string    `json:"author"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// TicketDraft carries the user input for a new ticket.
	TicketDraft struct {
		Title       string
		Description string
		Category    string
		Priority    TicketPriority
		User        string
	}

	// DayCount is one point of the tickets-over-time series.
	DayCount struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}

	// TicketStats is the roll-up shown on the ticket dashboard.
	TicketStats struct {
		Total      int                    `json:"total"`
		ByStatus   map[TicketStatus]int   `json:"byStatus"`
		ByPriority map[TicketPriority]int `json:"byPriority"`
		OverTime   []DayCount             `json:"overTime"`
	}
)

// Validate checks the mandatory fields of a draft.
func (d TicketDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyMessage
	}
	if strings.TrimSpace(d.User) == "" {
		return ErrEmptyAuthor
	}
	return nil
}

// NewTicket builds an Open ticket from a draft. The priority defaults to Low.
func NewTicket(d TicketDraft, id string, now time.Time) (Ticket, error) {
	if err := d.Validate(); err != nil {
		return Ticket{}, err
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityLow
	}
	return Ticket{
		ID:        id,
		Subject:   strings.TrimSpace(d.Title),
		Message:   strings.TrimSpace(d.Description),
		Category:  strings.TrimSpace(d.Category),
		Priority:  priority,
		Status:    TicketOpen,
		Comments:  []Comment{},
		CreatedBy: strings.TrimSpace(d.User),
		CreatedAt: now.UTC(),
	}, nil
}

// NewComment builds a comment; text and author are mandatory.
func NewComment(text, author, id string, now time.Time) (Comment, error) {
	if strings.TrimSpace(text) == "" {
		return Comment{}, ErrEmptyMessage
	}
	if strings.TrimSpace(author) == "" {
		return Comment{}, ErrEmptyAuthor
	}
	return Comment{
		ID:        id,
		Text:      strings.TrimSpace(text),
		Author:    strings.TrimSpace(author),
		CreatedAt: now.UTC(),
	}, nil
}

// Clone deep-copies the ticket including its comment thread.
func (t Ticket) Clone() Ticket {
	t.Comments = append([]Comment{}, t.Comments...)
	return t
}
