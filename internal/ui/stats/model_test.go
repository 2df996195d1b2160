package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskboard/internal/model"
)

func TestViewShowsCounts(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	tasks := []model.Task{
		{ID: 1, Title: "a", Priority: model.PriorityHigh, Status: model.StatusPending, DueDate: now.AddDate(0, 0, -2)},
		{ID: 2, Title: "b", Priority: model.PriorityLow, Status: model.StatusCompleted},
		{ID: 3, Title: "c", Priority: model.PriorityHigh, Status: model.StatusPending, CategoryID: 1},
		{ID: 4, Title: "d", Priority: model.PriorityMedium, Status: model.StatusCompleted},
	}

	m := New(80)
	m.SetData(tasks, []model.Category{{ID: 1, Name: "Work", TaskCount: 1}}, now)

	s := m.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 50, s.CompletionRate)
	assert.Equal(t, 2, s.PendingByPriority[model.PriorityHigh])

	view := m.View()
	assert.Contains(t, view, "Statistics")
	assert.Contains(t, view, "50%")
	assert.Contains(t, view, "Work")
}

func TestViewWithoutTasks(t *testing.T) {
	m := New(60)
	m.SetData(nil, nil, time.Now())
	assert.Equal(t, 0, m.Stats().CompletionRate)
	assert.NotContains(t, m.View(), "By category")
}
