// Package filter narrows and orders task lists for display. All functions
// are pure: they never modify their input.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/taskboard/internal/model"
)

// All disables a filter dimension.
const All = "all"

// SortKey names a task ordering.
type SortKey string

const (
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortCreated  SortKey = "created"
	SortTitle    SortKey = "title"
)

// SortKeys lists the orderings in cycling order.
var SortKeys = []SortKey{SortDueDate, SortPriority, SortCreated, SortTitle}

// Label returns a short display name.
func (k SortKey) Label() string {
	switch k {
	case SortDueDate:
		return "Due date"
	case SortPriority:
		return "Priority"
	case SortCreated:
		return "Newest"
	case SortTitle:
		return "Title"
	default:
		return string(k)
	}
}

// Next returns the ordering after k, wrapping around.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}

// Filters constrains which tasks are shown. Each field is either All or a
// value to match exactly; Category holds a category ID in string form.
type Filters struct {
	Status   string
	Priority string
	Category string
}

// DefaultFilters matches every task.
func DefaultFilters() Filters {
	return Filters{Status: All, Priority: All, Category: All}
}

// IsActive reports whether any dimension is constrained.
func (f Filters) IsActive() bool {
	return active(f.Status) || active(f.Priority) || active(f.Category)
}

func active(v string) bool { return v != "" && v != All }

// Match reports whether task passes the filters.
func (f Filters) Match(task model.Task) bool {
	if active(f.Status) && f.Status != string(task.Status) {
		return false
	}
	if active(f.Priority) && f.Priority != string(task.Priority) {
		return false
	}
	if active(f.Category) && f.Category != task.CategoryID.String() {
		return false
	}
	return true
}

// MatchSearch reports whether the title or description contains search,
// ignoring case. The empty search matches everything; whitespace is matched
// literally.
func MatchSearch(task model.Task, search string) bool {
	q := strings.ToLower(search)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), q) ||
		strings.Contains(strings.ToLower(task.Description), q)
}

// FilterAndSort returns the tasks matching search and filters, ordered by
// key. Unknown keys keep input order. Ties always keep input order.
func FilterAndSort(tasks []model.Task, search string, filters Filters, key SortKey) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filters.Match(t) && MatchSearch(t, search) {
			out = append(out, t)
		}
	}

	switch key {
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a.IsZero() != b.IsZero() {
				return b.IsZero()
			}
			return a.Before(b)
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	case SortCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortTitle:
		c := collate.New(language.Und)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	}

	return out
}
