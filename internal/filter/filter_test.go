package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func fixtures() []model.Task {
	return []model.Task{
		{ID: 1, Title: "banana", Priority: model.PriorityLow, Status: model.StatusPending,
			CategoryID: 1, DueDate: date(2024, 3, 5), CreatedAt: date(2024, 1, 1)},
		{ID: 2, Title: "Apple", Description: "Buy groceries", Priority: model.PriorityHigh, Status: model.StatusCompleted,
			CategoryID: 2, DueDate: date(2024, 3, 1), CreatedAt: date(2024, 1, 3)},
		{ID: 3, Title: "cherry", Priority: model.PriorityMedium, Status: model.StatusPending,
			CategoryID: 1, DueDate: date(2024, 3, 3), CreatedAt: date(2024, 1, 2)},
		{ID: 4, Title: "apricot", Priority: model.PriorityHigh, Status: model.StatusPending,
			DueDate: date(2024, 3, 4), CreatedAt: date(2024, 1, 4)},
	}
}

func ids(tasks []model.Task) []model.ID {
	out := make([]model.ID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilterAndSortOrderings(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []model.ID
	}{
		{SortDueDate, []model.ID{2, 3, 4, 1}},
		{SortPriority, []model.ID{2, 4, 3, 1}},
		{SortCreated, []model.ID{4, 2, 3, 1}},
		{SortTitle, []model.ID{2, 4, 1, 3}},
		{SortKey("bogus"), []model.ID{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := FilterAndSort(fixtures(), "", DefaultFilters(), tt.key)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterAndSortFilters(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		filters Filters
		want    []model.ID
	}{
		{"pending only", "", Filters{Status: "pending", Priority: All, Category: All}, []model.ID{3, 4, 1}},
		{"high priority", "", Filters{Status: All, Priority: "high", Category: All}, []model.ID{2, 4}},
		{"category by string id", "", Filters{Status: All, Priority: All, Category: "1"}, []model.ID{3, 1}},
		{"search title ignores case", "APP", DefaultFilters(), []model.ID{2}},
		{"search description", "grocer", DefaultFilters(), []model.ID{2}},
		{"combined", "a", Filters{Status: "pending", Priority: "high", Category: All}, []model.ID{4}},
		{"no match", "zzz", DefaultFilters(), []model.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(fixtures(), tt.search, tt.filters, SortDueDate)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	in := fixtures()
	before := ids(in)

	FilterAndSort(in, "", DefaultFilters(), SortTitle)
	assert.Equal(t, before, ids(in))
}

func TestFilterAndSortIdempotent(t *testing.T) {
	f := Filters{Status: "pending", Priority: All, Category: All}
	once := FilterAndSort(fixtures(), "a", f, SortPriority)
	twice := FilterAndSort(once, "a", f, SortPriority)
	assert.Equal(t, ids(once), ids(twice))
}

func TestPrioritySortIsStable(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Priority: model.PriorityHigh},
		{ID: 2, Priority: model.PriorityLow},
		{ID: 3, Priority: model.PriorityHigh},
		{ID: 4, Priority: model.PriorityHigh},
	}
	got := FilterAndSort(tasks, "", DefaultFilters(), SortPriority)
	assert.Equal(t, []model.ID{1, 3, 4, 2}, ids(got))
}

func TestFiltersIsActive(t *testing.T) {
	assert.False(t, DefaultFilters().IsActive())
	assert.False(t, Filters{}.IsActive())
	assert.True(t, Filters{Status: All, Priority: "low", Category: All}.IsActive())
}

func TestSortKeyNextWraps(t *testing.T) {
	assert.Equal(t, SortPriority, SortDueDate.Next())
	assert.Equal(t, SortDueDate, SortTitle.Next())
	assert.Equal(t, SortDueDate, SortKey("bogus").Next())
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)

	s := ComputeStats(fixtures(), now)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 3, s.Pending)
	// cherry (due 3/3) is overdue; apricot is due today; the completed task is ignored.
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 25, s.CompletionRate)
	assert.Equal(t, 1, s.PendingByPriority[model.PriorityHigh])
	assert.Equal(t, 1, s.PendingByPriority[model.PriorityMedium])
	assert.Equal(t, 1, s.PendingByPriority[model.PriorityLow])

	empty := ComputeStats(nil, now)
	assert.Equal(t, 0, empty.CompletionRate)
	require.NotNil(t, empty.PendingByPriority)
}

func TestCountByCategory(t *testing.T) {
	counts := CountByCategory(fixtures())
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, 1, counts[2])
	assert.Len(t, counts, 2)
}

func TestSearchMatchesWhitespaceLiterally(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "pay rent"},
		{ID: 2, Title: "groceries"},
	}
	assert.Equal(t, []model.ID{1}, ids(FilterAndSort(tasks, " ", DefaultFilters(), "")))
	assert.Equal(t, []model.ID{1, 2}, ids(FilterAndSort(tasks, "", DefaultFilters(), "")))
}

func TestTitleSortOrdersCase(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "B"},
		{ID: 2, Title: "A"},
		{ID: 3, Title: "b"},
		{ID: 4, Title: "a"},
	}
	got := FilterAndSort(tasks, "", DefaultFilters(), SortTitle)
	assert.Equal(t, []model.ID{4, 2, 3, 1}, ids(got))
}
