// Package pagination normalises page/limit input and builds listing metadata.
package pagination

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Policy is the default and maximum page size of one kind of listing.
type Policy struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	Blogs         = Policy{DefaultLimit: 10, MaxLimit: 10}
	Comments      = Policy{DefaultLimit: 20, MaxLimit: 50}
	Notifications = Policy{DefaultLimit: 20, MaxLimit: 50}
)

type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Parse reads raw query values by their leading integer, so "5abc" is 5. Values without one, and
// zero, fall back to the defaults; a negative limit becomes 1 and a limit over the cap becomes the
// cap.
func (p Policy) Parse(rawPage, rawLimit string) Page {
	page := 1
	if n, ok := leadingInt(rawPage); ok && n > 1 {
		page = n
	}

	limit := p.DefaultLimit
	if n, ok := leadingInt(rawLimit); ok && n != 0 {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	return Page{Number: page, Limit: limit}
}

// leadingInt parses an optional sign and the digits that follow it, ignoring leading whitespace
// and anything after the digits.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewMeta(p Page, totalCount int64) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       p.Limit,
		HasNextPage: p.Number < totalPages,
		HasPrevPage: p.Number > 1,
	}
}

// Collect runs the page query, the count query and any extra queries concurrently. It returns
// the first error; the metadata is only meaningful when err is nil.
func Collect(ctx context.Context, p Page, page func(ctx context.Context) error, count func(ctx context.Context) (int64, error), also ...func(ctx context.Context) error) (Meta, error) {
	g, gctx := errgroup.WithContext(ctx)

	var total int64
	g.Go(func() error {
		return page(gctx)
	})
	g.Go(func() error {
		n, err := count(gctx)
		total = n
		return err
	})
	for _, fn := range also {
		fn := fn
		g.Go(func() error {
			return fn(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return Meta{}, err
	}
	return NewMeta(p, total), nil
}
