package domain

import (
	"math"
	"strings"
)

// Pagination bounds for list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is the filter and window of a list request.
type ListQuery struct {
	Q    string
	Page int
	Size int
}

// Normalize fills in defaults, clamps the page size and caps the page so
// that Offset cannot overflow.
func (q ListQuery) Normalize() ListQuery {
	q.Q = strings.TrimSpace(q.Q)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if maxPage := math.MaxInt / q.Size; q.Page > maxPage {
		q.Page = maxPage
	}
	return q
}

// Offset is the number of rows skipped before this page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

// PageMeta describes a returned page. Size is the number of items actually
// returned, Total the number of rows matching the filter.
type PageMeta struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// Page is one window of a list result.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPage wraps items, never returning a nil Data slice.
func NewPage[T any](items []T, q ListQuery, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Data: items,
		Meta: PageMeta{Page: q.Page, Size: len(items), Total: total},
	}
}
