// Package reveal implements incremental listing: a scroll-driven reveal
// counter and a fixed-size paginator.
package reveal

// Defaults for the saved-plants listing.
const (
	DefaultPageSize  = 6
	DefaultIncrement = 3
	Threshold        = 0.5
)

// Controller tracks how many items of a list are visible. The zero value
// shows nothing; use New. A Controller is not safe for concurrent use.
type Controller struct {
	pageSize  int
	increment int
	total     int
	visible   int
}

// New returns a controller showing min(pageSize, total) items.
func New(pageSize, increment, total int) *Controller {
	c := &Controller{
		pageSize:  max(pageSize, 0),
		increment: max(increment, 0),
		total:     max(total, 0),
	}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.visible = min(c.pageSize, c.total)
}

// Visible returns the number of items currently shown.
func (c *Controller) Visible() int { return c.visible }

// Total returns the list length.
func (c *Controller) Total() int { return c.total }

// Observing reports whether the sentinel still needs to be watched.
func (c *Controller) Observing() bool { return c.visible < c.total }

// Intersect handles a visibility signal for the sentinel. When ratio reaches
// Threshold the visible count grows by the increment, capped at the total.
// It reports whether the count changed.
func (c *Controller) Intersect(ratio float64) bool {
	if ratio < Threshold || !c.Observing() {
		return false
	}
	next := min(c.visible+c.increment, c.total)
	if next == c.visible {
		return false
	}
	c.visible = next
	return true
}

// SetTotal updates the list length. Any change resets the visible count.
func (c *Controller) SetTotal(total int) {
	total = max(total, 0)
	if total == c.total {
		return
	}
	c.total = total
	c.reset()
}

// Seek restores a previously reported visible count, clamped to
// [min(pageSize, total), total].
func (c *Controller) Seek(n int) {
	floor := min(c.pageSize, c.total)
	c.visible = min(max(n, floor), c.total)
}

// DefaultPerPage is the search results page size.
const DefaultPerPage = 3

// Paginator splits a list into fixed-size pages numbered from 1.
type Paginator struct {
	PerPage int
	Total   int
}

// NewPaginator returns a paginator over total items with perPage items per page.
// A non-positive perPage selects DefaultPerPage.
func NewPaginator(perPage, total int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Paginator{PerPage: perPage, Total: max(total, 0)}
}

// TotalPages returns the number of pages; an empty list has none.
func (p Paginator) TotalPages() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Clamp limits page to [1, TotalPages], returning 1 for an empty list.
func (p Paginator) Clamp(page int) int {
	return max(1, min(page, p.TotalPages()))
}

// Page returns the [start, end) bounds of page after clamping.
func (p Paginator) Page(page int) (start, end int) {
	page = p.Clamp(page)
	start = min((page-1)*p.PerPage, p.Total)
	end = min(start+p.PerPage, p.Total)
	return start, end
}
