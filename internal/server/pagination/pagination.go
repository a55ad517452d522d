// Package pagination holds the page-size policy, offset arithmetic, the UI
// page window and the opaque cursor codec shared by both listing modes.
//
// Both modes order by created_at DESC, id DESC.
package pagination

import (
	"fmt"
	"slices"
)

// DefaultAllowedSizes is the fixed set of selectable page sizes.
var DefaultAllowedSizes = []int{10, 20, 40, 80}

const DefaultPageSize = 20

// Policy maps requested page sizes onto the allowed set.
type Policy struct {
	allowed []int
	def     int
}

// DefaultPolicy allows {10, 20, 40, 80} and falls back to 20.
func DefaultPolicy() Policy {
	return Policy{allowed: slices.Clone(DefaultAllowedSizes), def: DefaultPageSize}
}

// NewPolicy validates that def is itself allowed and every size is positive.
func NewPolicy(allowed []int, def int) (Policy, error) {
	if len(allowed) == 0 {
		return Policy{}, fmt.Errorf("page size policy: empty allowed set")
	}
	for _, n := range allowed {
		if n <= 0 {
			return Policy{}, fmt.Errorf("page size policy: non-positive size %d", n)
		}
	}
	if !slices.Contains(allowed, def) {
		return Policy{}, fmt.Errorf("page size policy: default %d not in %v", def, allowed)
	}
	return Policy{allowed: slices.Clone(allowed), def: def}, nil
}

// Size returns n when it is allowed and the default otherwise.
func (p Policy) Size(n int) int {
	if slices.Contains(p.allowed, n) {
		return n
	}
	return p.def
}

// Default is the fallback page size.
func (p Policy) Default() int { return p.def }

// Allowed returns a copy of the allowed sizes.
func (p Policy) Allowed() []int { return slices.Clone(p.allowed) }

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage pulls page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// Offset is the number of rows preceding page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

// Window is the contiguous run of page numbers shown around the current page.
type Window struct {
	Pages []int
	// HasMore is set when pages exist beyond the window, so the UI can
	// render an ellipsis before the last page.
	HasMore bool
}

// PageRange returns pages page-2 .. page+2 clipped to [1, totalPages].
func PageRange(page, totalPages int) Window {
	if totalPages < 1 {
		totalPages = 1
	}
	page = ClampPage(page, totalPages)

	start := max(1, page-2)
	end := min(totalPages, page+2)

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return Window{Pages: pages, HasMore: totalPages > page+2}
}

// ItemSpan returns the 1-based ordinals of the first and last item on page,
// or (0, 0) when there are no items.
func ItemSpan(page, size, total int) (first, last int) {
	if total <= 0 {
		return 0, 0
	}
	first = Offset(page, size) + 1
	last = min(page*size, total)
	if first > last {
		return 0, 0
	}
	return first, last
}

// OffsetPage is a page addressed by number, with totals for UI navigation.
type OffsetPage[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// Window returns the page window around p.Page.
func (p *OffsetPage[T]) Window() Window {
	return PageRange(p.Page, p.TotalPages)
}

// CursorPage is a page addressed by an opaque cursor. It carries no totals.
type CursorPage[T any] struct {
	Items []T
	// NextCursor is empty when Items is empty.
	NextCursor string
	HasMore    bool
	PageSize   int
}
