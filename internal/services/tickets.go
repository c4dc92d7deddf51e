package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"duka/internal/amqp"
	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/ports"
	"duka/internal/state"
)

// DefaultCommentAuthor signs comments posted without an author.
const DefaultCommentAuthor = "Admin"

// TicketStore is the state container of the support desk.
type TicketStore = state.Store[state.Tickets, state.TicketAction]

type (
	// CreateTicketRequest is the body of POST /api/tickets.
	CreateTicketRequest struct {
		Title       string `json:"title" validate:"required,max=200"`
		Description string `json:"description" validate:"required,max=5000"`
		Category    string `json:"category" validate:"max=100"`
		Priority    string `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent low medium high urgent"`
		User        string `json:"user" validate:"required,max=254"`
	}

	// AddCommentRequest is the body of POST /api/tickets/{id}/comments.
	AddCommentRequest struct {
		Text   string `json:"text" validate:"required,max=2000"`
		Author string `json:"author" validate:"max=100"`
	}
)

// TicketService serves the support desk.
type TicketService struct {
	store     *TicketStore
	publisher ports.EventPublisher
	logger    *log.StructuredLogger
	validate  *validator.Validate
	newID     func() string
	now       func() time.Time
}

func NewTicketService(store *TicketStore, publisher ports.EventPublisher, logger *log.Logger) *TicketService {
	return &TicketService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentTickets)),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// OpenTicketStore opens the support desk persisted in kv, seeding the
// fixture tickets on first use.
func OpenTicketStore(ctx context.Context, kv ports.KVStore) (*TicketStore, error) {
	return state.Open(ctx, state.Options[state.Tickets, state.TicketAction]{
		Reducer:   state.ReduceTickets,
		Persister: state.NewKVPersister[state.Tickets](kv, state.TicketsKey),
		Clone:     state.CloneTickets,
		Seed:      func() state.Tickets { return state.Tickets{Tickets: core.SeedTickets()} },
	})
}

// ValidationError wraps the validator's field errors.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string {
	verrs, ok := e.err.(validator.ValidationErrors)
	if !ok {
		return e.err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.err }

func (s *TicketService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return &ValidationError{err: err}
	}
	return nil
}

// List returns every ticket, newest first.
func (s *TicketService) List(_ context.Context) []core.Ticket {
	return s.store.State().Tickets
}

// Get returns one ticket with its thread.
func (s *TicketService) Get(_ context.Context, id string) (core.Ticket, error) {
	t, ok := s.store.State().FindTicket(id)
	if !ok {
		return core.Ticket{}, fmt.Errorf("ticket %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

// Create validates req and opens a new ticket.
func (s *TicketService) Create(ctx context.Context, req CreateTicketRequest) (core.Ticket, error) {
	if err := s.check(req); err != nil {
		return core.Ticket{}, err
	}
	priority, err := core.ParseTicketPriority(req.Priority)
	if err != nil {
		return core.Ticket{}, err
	}
	t, err := core.NewTicket(core.TicketDraft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
		User:        req.User,
	}, s.newID(), s.now())
	if err != nil {
		return core.Ticket{}, err
	}
	if _, _, err := s.store.Dispatch(ctx, state.CreateTicket{Ticket: t}); err != nil {
		return core.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	s.logger.Debug(ctx, "Ticket created", log.FieldEntityID, t.ID, "priority", t.Priority)
	return t, nil
}

// UpdateStatus moves a ticket to a new status and publishes the change.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status core.TicketStatus) (core.Ticket, error) {
	before, after, err := s.store.Dispatch(ctx, state.UpdateTicketStatus{ID: id, Status: status})
	if err != nil {
		return core.Ticket{}, fmt.Errorf("update ticket status: %w", err)
	}
	prev, _ := before.FindTicket(id)
	updated, _ := after.FindTicket(id)

	s.logger.LogStatusChanged(ctx, amqp.KindTicket, id, string(prev.Status), string(updated.Status))
	publish(ctx, s.publisher, s.logger, amqp.KindTicket, id, string(prev.Status), string(updated.Status))
	return updated, nil
}

// AddComment appends a reply to the ticket thread.
func (s *TicketService) AddComment(ctx context.Context, id string, req AddCommentRequest) (core.Comment, error) {
	if err := s.check(req); err != nil {
		return core.Comment{}, err
	}
	author := req.Author
	if strings.TrimSpace(author) == "" {
		author = DefaultCommentAuthor
	}
	c, err := core.NewComment(req.Text, author, s.newID(), s.now())
	if err != nil {
		return core.Comment{}, err
	}
	if _, _, err := s.store.Dispatch(ctx, state.AddComment{ID: id, Comment: c}); err != nil {
		return core.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// Stats rolls up the current desk.
func (s *TicketService) Stats(_ context.Context) core.TicketStats {
	return TicketStats(s.store.State().Tickets)
}

// TicketStats counts tickets by status and priority and per creation day.
// Every status and priority is present in the maps, zero or not.
func TicketStats(tickets []core.Ticket) core.TicketStats {
	stats := core.TicketStats{
		Total:      len(tickets),
		ByStatus:   make(map[core.TicketStatus]int),
		ByPriority: make(map[core.TicketPriority]int),
		OverTime:   []core.DayCount{},
	}
	for _, st := range core.TicketStatuses() {
		stats.ByStatus[st] = 0
	}
	for _, p := range core.TicketPriorities() {
		stats.ByPriority[p] = 0
	}

	perDay := make(map[string]int)
	for _, t := range tickets {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		perDay[t.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	for day, n := range perDay {
		stats.OverTime = append(stats.OverTime, core.DayCount{Date: day, Count: n})
	}
	sort.Slice(stats.OverTime, func(i, j int) bool {
		return stats.OverTime[i].Date < stats.OverTime[j].Date
	})
	return stats
}
