// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of rows shown in paged lists.
const PageSize = 25

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window converts a 1-based start index into skip and limit values for
// a find. The limit fetches one extra row so Trim can tell whether a
// following page exists.
func Window(start int) (skip, limit int64) {
	return int64(start - 1), int64(PageSize + 1)
}

// Page holds the display values for one page of a list.
type Page struct {
	Start     int // 1-based index of the first shown row (0 if empty)
	End       int // 1-based index of the last shown row (0 if empty)
	PrevStart int
	NextStart int
	HasPrev   bool
	HasNext   bool
}

// Trim trims a slice fetched through Window down to PageSize rows, in
// place, and returns the page indicators.
func Trim[T any](rows *[]T, start int) Page {
	p := Page{HasPrev: start > 1, PrevStart: 1, NextStart: 1}
	if prev := start - PageSize; prev > 1 {
		p.PrevStart = prev
	}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		p.HasNext = true
	}
	if shown := len(*rows); shown > 0 {
		p.Start = start
		p.End = start + shown - 1
		p.NextStart = start + shown
	}
	return p
}
