// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 1000
	PerPage      = 10
	ChartPoints  = 30

	// Unbounded is the limit value meaning "no LIMIT clause".
	Unbounded = -1
)

var ErrInvalidPage = errors.New("invalid page")

// ParseLimit reads the row limit for listings and exports. all=1 lifts the
// limit entirely; a missing, non-numeric or negative limit falls back to
// DefaultLimit. limit=0 is honored and yields no rows.
func ParseLimit(q url.Values) int {
	if q.Get("all") == "1" {
		return Unbounded
	}

	raw := q.Get("limit")
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return DefaultLimit
	}
	return n
}

// ClampLimit parses raw and bounds it to [1, max]. Missing or invalid values
// yield max.
func ClampLimit(raw string, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n > max {
		return max
	}
	if n < 1 {
		return 1
	}
	return n
}

// Pagination describes one page of a listing and the rows to fetch for it.
type Pagination struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int
}

func (p Pagination) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Pagination) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Pagination) HasPrevious() bool {
	return p.Number > 1
}

// Paginate resolves the page parameter against total rows. An empty page
// means the first page and "last" the final one. Any other value must be an
// integer within range, except that page 1 always exists.
func Paginate(total int, page string, perPage int) (Pagination, error) {
	if perPage <= 0 {
		perPage = PerPage
	}

	numPages := (total + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}

	p := Pagination{NumPages: numPages, PerPage: perPage, Count: total}

	switch page {
	case "":
		p.Number = 1
	case "last":
		p.Number = numPages
	default:
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 || n > numPages {
			return Pagination{}, ErrInvalidPage
		}
		p.Number = n
	}
	return p, nil
}
