package filter

import (
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Stats summarizes a task list.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int

	// CompletionRate is Completed/Total as a whole percentage, 0 when empty.
	CompletionRate int

	// PendingByPriority counts pending tasks only.
	PendingByPriority map[model.Priority]int
}

// ComputeStats summarizes tasks as of now.
func ComputeStats(tasks []model.Task, now time.Time) Stats {
	s := Stats{
		Total: len(tasks),
		PendingByPriority: map[model.Priority]int{
			model.PriorityHigh:   0,
			model.PriorityMedium: 0,
			model.PriorityLow:    0,
		},
	}
	for _, t := range tasks {
		if t.IsCompleted() {
			s.Completed++
			continue
		}
		s.Pending++
		s.PendingByPriority[t.Priority]++
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = (s.Completed*100 + s.Total/2) / s.Total
	}
	return s
}

// CountByCategory returns the number of tasks filed under each category.
// Uncategorized tasks are not counted.
func CountByCategory(tasks []model.Task) map[model.ID]int {
	counts := make(map[model.ID]int)
	for _, t := range tasks {
		if t.CategoryID.IsSet() {
			counts[t.CategoryID]++
		}
	}
	return counts
}
