package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDataset     = errors.New("invalid dataset")
	ErrUnknownGranularity = errors.New("unknown granularity")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrUnknownPriority    = errors.New("unknown priority")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptySubject       = errors.New("empty subject")
	ErrEmptyMessage       = errors.New("empty message")
	ErrEmptyAuthor        = errors.New("empty author")
	ErrCatalogUnavailable = errors.New("product catalog unavailable")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrInvalidDateRange   = errors.New("invalid date range")
)

// TransitionError reports a rejected status change.
type TransitionError struct {
	Kind string
	ID   string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot move from %q to %q", e.Kind, e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsClientError returns true if the error was caused by invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownGranularity) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrUnknownPriority) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptySubject) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrEmptyAuthor) ||
		errors.Is(err, ErrInvalidCursor) ||
		errors.Is(err, ErrInvalidDateRange)
}

// IsNotFound returns true if the error indicates a missing order or ticket.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error is a rejected state change.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
