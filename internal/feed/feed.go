// Package feed filters and paginates the item feed in memory.
//
// A Feed is recomputed synchronously whenever a criterion changes and never
// touches the network. Pages accumulate: page n shows the first n*PageSize
// matching items. A Feed is not safe for concurrent use.
package feed

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

// PageSize is the number of items added by each page.
const PageSize = 12

// View is a coarse feed filter shown as tabs.
type View string

// Feed views.
const (
	ViewAll     View = "all"
	ViewLost    View = "lost"
	ViewFound   View = "found"
	ViewPending View = "pending"
)

// Views lists every view in tab order.
var Views = []View{ViewAll, ViewLost, ViewFound, ViewPending}

// ParseView parses a view name. An empty name selects ViewAll.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewLost, ViewFound, ViewPending:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q (want all, lost, found or pending)", s)
	}
}

// Match reports whether an item with status s belongs in the view.
func (v View) Match(s model.Status) bool {
	switch v {
	case ViewLost:
		return s == model.StatusLost
	case ViewFound:
		return s == model.StatusFoundPending || s == model.StatusFoundConfirmed
	case ViewPending:
		return s == model.StatusFoundPending
	default:
		return true
	}
}

// ParseStatusFilter parses an exact status filter. "all" and the empty string
// disable the filter and yield model.StatusUnknown.
func ParseStatusFilter(s string) (model.Status, error) {
	if s = strings.TrimSpace(s); s == "" || strings.EqualFold(s, "all") {
		return model.StatusUnknown, nil
	}
	status := model.ParseStatus(s)
	if status == model.StatusUnknown {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// Criteria selects the items shown by a Feed.
type Criteria struct {
	View     View
	Search   string
	Status   model.Status
	Category string
}

// Counts holds the number of items per view over the whole collection.
type Counts struct {
	All     int
	Lost    int
	Found   int
	Pending int
}

// Feed is a filtered, paginated view of an item collection.
type Feed struct {
	items    []model.Item
	criteria Criteria
	filtered []model.Item
	page     int
}

// New returns a feed over items showing the first page of every item.
func New(items []model.Item) *Feed {
	f := &Feed{items: items, criteria: Criteria{View: ViewAll}}
	f.refilter()
	return f
}

// Criteria returns the current criteria.
func (f *Feed) Criteria() Criteria {
	return f.criteria
}

// SetItems replaces the collection, e.g. after a refetch.
func (f *Feed) SetItems(items []model.Item) {
	f.items = items
	f.refilter()
}

// SetView selects a view. An unknown view behaves as ViewAll.
func (f *Feed) SetView(v View) {
	f.criteria.View = v
	f.refilter()
}

// SetSearch sets the free-text search term.
func (f *Feed) SetSearch(term string) {
	f.criteria.Search = term
	f.refilter()
}

// SetStatus sets the exact status filter. model.StatusUnknown shows all.
func (f *Feed) SetStatus(s model.Status) {
	f.criteria.Status = s
	f.refilter()
}

// SetCategory sets the exact category filter. "" or "all" shows all.
func (f *Feed) SetCategory(c string) {
	f.criteria.Category = c
	f.refilter()
}

// Apply replaces all criteria at once.
func (f *Feed) Apply(c Criteria) {
	f.criteria = c
	f.refilter()
}

// refilter recomputes the filtered set and goes back to the first page.
func (f *Feed) refilter() {
	f.filtered = Filter(f.items, f.criteria)
	f.page = 1
}

// Filter returns the items matching c, in collection order.
func Filter(items []model.Item, c Criteria) []model.Item {
	term := strings.ToLower(strings.TrimSpace(c.Search))
	category := strings.TrimSpace(c.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !c.View.Match(item.Status) {
			continue
		}
		if term != "" && !matchesText(item, term) {
			continue
		}
		if c.Status != model.StatusUnknown && item.Status != c.Status {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesText(item model.Item, term string) bool {
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Description), term) ||
		strings.Contains(strings.ToLower(item.Location), term)
}

// Filtered returns a copy of every item matching the criteria.
func (f *Feed) Filtered() []model.Item {
	return slices.Clone(f.filtered)
}

// Displayed returns the items on the pages loaded so far. The result is
// capped so appending to it never writes into the feed.
func (f *Feed) Displayed() []model.Item {
	n := f.shown()
	return f.filtered[:n:n]
}

func (f *Feed) shown() int {
	return min(f.page*PageSize, len(f.filtered))
}

// HasMore reports whether LoadMore would show more items.
func (f *Feed) HasMore() bool {
	return f.shown() < len(f.filtered)
}

// Remaining returns how many matching items are not yet displayed.
func (f *Feed) Remaining() int {
	return len(f.filtered) - f.shown()
}

// LoadMore extends the displayed window by one page. It reports whether
// anything was added.
func (f *Feed) LoadMore() bool {
	if !f.HasMore() {
		return false
	}
	f.page++
	return true
}

// Page returns the number of pages loaded, starting at 1.
func (f *Feed) Page() int {
	return f.page
}

// TotalPages returns the number of pages the filtered set spans.
func (f *Feed) TotalPages() int {
	return (len(f.filtered) + PageSize - 1) / PageSize
}

// Counts tallies the whole collection per view, ignoring the criteria.
func (f *Feed) Counts() Counts {
	var c Counts
	for _, item := range f.items {
		c.All++
		if ViewLost.Match(item.Status) {
			c.Lost++
		}
		if ViewFound.Match(item.Status) {
			c.Found++
		}
		if ViewPending.Match(item.Status) {
			c.Pending++
		}
	}
	return c
}
