package services

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// PageRequest is a 1-indexed page window request.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults to non-positive values, caps the limit and caps
// the page so the window end stays representable.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page > math.MaxInt/p.Limit {
		p.Page = math.MaxInt / p.Limit
	}
	return p
}

// Skip is the index of the first item of the page.
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Limit
}

// PageCursor points at an adjacent page.
type PageCursor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination links a page to its neighbours. Absent links are omitted.
type Pagination struct {
	Next *PageCursor `json:"next,omitempty"`
	Prev *PageCursor `json:"prev,omitempty"`
}

// Paginate computes the links of page p over total items: next only when the
// window ends before total, prev only when it starts after zero.
func Paginate(p PageRequest, total int64) Pagination {
	p = p.Normalize()
	start := int64(p.Skip())
	end := int64(p.Page) * int64(p.Limit)

	var pg Pagination
	if end < total {
		pg.Next = &PageCursor{Page: p.Page + 1, Limit: p.Limit}
	}
	if start > 0 {
		pg.Prev = &PageCursor{Page: p.Page - 1, Limit: p.Limit}
	}
	return pg
}
