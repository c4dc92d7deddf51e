package state

import (
	"fmt"

	"duka/internal/core"
)

// TicketsKey is the KV key of the persisted tickets state.
const TicketsKey = "tickets"

// Tickets is the persisted support desk, newest first.
type Tickets struct {
	Tickets []core.Ticket `json:"tickets"`
}

// TicketAction is implemented by every action the tickets reducer accepts.
type TicketAction interface {
	ticketAction()
}

type (
	// CreateTicket prepends a fully built ticket.
	CreateTicket struct {
		Ticket core.Ticket
	}

	// UpdateTicketStatus moves ticket ID to Status.
	UpdateTicketStatus struct {
		ID     string
		Status core.TicketStatus
	}

	// AddComment appends Comment to the thread of ticket ID.
	AddComment struct {
		ID      string
		Comment core.Comment
	}
)

func (CreateTicket) ticketAction()       {}
func (UpdateTicketStatus) ticketAction() {}
func (AddComment) ticketAction()         {}

// CloneTickets deep-copies the desk including comment threads.
func CloneTickets(s Tickets) Tickets {
	out := Tickets{Tickets: make([]core.Ticket, len(s.Tickets))}
	for i, t := range s.Tickets {
		out.Tickets[i] = t.Clone()
	}
	return out
}

// FindTicket returns the ticket with id.
func (s Tickets) FindTicket(id string) (core.Ticket, bool) {
	for _, t := range s.Tickets {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return core.Ticket{}, false
}

// ReduceTickets is the pure reducer of the support desk.
func ReduceTickets(s Tickets, action TicketAction) (Tickets, error) {
	switch a := action.(type) {
	case CreateTicket:
		if _, exists := s.FindTicket(a.Ticket.ID); exists {
			return s, fmt.Errorf("ticket %s already exists", a.Ticket.ID)
		}
		next := Tickets{Tickets: make([]core.Ticket, 0, len(s.Tickets)+1)}
		next.Tickets = append(next.Tickets, a.Ticket.Clone())
		next.Tickets = append(next.Tickets, CloneTickets(s).Tickets...)
		return next, nil

	case UpdateTicketStatus:
		return updateTicket(s, a.ID, func(t *core.Ticket) error {
			if err := core.CheckTicketTransition(t.ID, t.Status, a.Status); err != nil {
				return err
			}
			t.Status = a.Status
			return nil
		})

	case AddComment:
		return updateTicket(s, a.ID, func(t *core.Ticket) error {
			t.Comments = append(t.Comments, a.Comment)
			return nil
		})

	default:
		return s, fmt.Errorf("unsupported ticket action %T", action)
	}
}

func updateTicket(s Tickets, id string, fn func(*core.Ticket) error) (Tickets, error) {
	next := CloneTickets(s)
	for i := range next.Tickets {
		if next.Tickets[i].ID != id {
			continue
		}
		if err := fn(&next.Tickets[i]); err != nil {
			return s, err
		}
		return next, nil
	}
	return s, fmt.Errorf("ticket %s: %w", id, core.ErrNotFound)
}
