package services

import (
	"fmt"
	"strconv"

	"duka/internal/core"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one slice of an infinite-scroll list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// Paginate returns the page starting at cursor. The cursor is the offset
// handed out as NextCursor by the previous page; empty means the start.
// limit defaults to DefaultPageSize and is capped at MaxPageSize.
func Paginate[T any](items []T, cursor string, limit int) (Page[T], error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return Page[T]{}, fmt.Errorf("%w: %q", core.ErrInvalidCursor, cursor)
		}
		offset = n
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	page := Page[T]{Items: []T{}, Total: len(items)}
	if offset >= len(items) {
		return page, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[offset:end]...)
	if end < len(items) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}
