package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Params is a page request; Page starts at 1
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for the page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromRequest reads ?page= and ?limit=, ignoring values out of range.
// Pages past MaxPage are clamped so Offset cannot overflow.
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page := 1
	limit := DefaultLimit
	if p := query.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = min(v, MaxPage)
		}
	}
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= MaxLimit {
			limit = v
		}
	}

	return Params{Page: page, Limit: limit}
}
