// Package paginator splits ordered listings into fixed-size numbered pages.
//
// Page numbers are 1-based. Requests for a page that is not a number fall back
// to page 1 and numbers outside 1..TotalPages clamp to the nearest valid page,
// so every request resolves to some page. An empty listing still has one
// (empty) page.
package paginator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of posts shown per feed page.
const DefaultPageSize = 10

// Window describes a resolved page without its items. Repositories use
// Offset and Limit to load only the visible rows.
type Window struct {
	Number     int
	TotalPages int
	Count      int
	PageSize   int
	Offset     int
	Limit      int
}

// NewWindow resolves the requested page number against count items.
func NewWindow(count, pageSize, number int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if count < 0 {
		count = 0
	}

	total := (count + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}

	switch {
	case number < 1:
		number = 1
	case number > total:
		number = total
	}

	offset := (number - 1) * pageSize
	limit := pageSize
	if remaining := count - offset; remaining < limit {
		limit = remaining
	}
	if limit < 0 {
		limit = 0
	}

	return Window{
		Number:     number,
		TotalPages: total,
		Count:      count,
		PageSize:   pageSize,
		Offset:     offset,
		Limit:      limit,
	}
}

// ParseNumber reads a "page" query value. Anything that is not an integer
// is treated as page 1. Integers too large for int saturate, so NewWindow
// clamps them to the last page like any other out-of-range number.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err == nil:
		return n
	case errors.Is(err, strconv.ErrRange):
		if strings.HasPrefix(strings.TrimSpace(raw), "-") {
			return math.MinInt
		}
		return math.MaxInt
	default:
		return 1
	}
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Count      int
	PageSize   int
}

// Paginate slices an already ordered listing.
func Paginate[T any](items []T, pageSize, number int) Page[T] {
	w := NewWindow(len(items), pageSize, number)
	return FromWindow(w, items[w.Offset:w.Offset+w.Limit])
}

// FromWindow wraps items that were loaded for w.
func FromWindow[T any](w Window, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Number:     w.Number,
		TotalPages: w.TotalPages,
		Count:      w.Count,
		PageSize:   w.PageSize,
	}
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasOtherPages() bool {
	return p.TotalPages > 1
}

func (p Page[T]) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

func (p Page[T]) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}

// PageRange lists every page number, for rendering page links.
func (p Page[T]) PageRange() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PageSize + 1
}
