package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities: high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool { return p.Rank() > 0 }

// ParsePriority normalizes case and whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is a unit of work on the board.
//
// CompletedAt is non-nil exactly when Status is StatusCompleted.
type Task struct {
	ID          ID         `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	CategoryID  ID         `json:"categoryId,omitempty" db:"category_id"`
	DueDate     time.Time  `json:"dueDate" db:"due_date"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// IsOverdue reports whether a pending task was due before today's local midnight.
func (t Task) IsOverdue(now time.Time) bool {
	if t.IsCompleted() || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// TaskData returns the creation-field snapshot used by templates.
func (t Task) TaskData() TaskData {
	due := t.DueDate
	td := TaskData{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		CategoryID:  t.CategoryID,
	}
	if !due.IsZero() {
		td.DueDate = &due
	}
	return td
}

// TaskData holds the fields a user supplies when creating a task. It carries
// no identity, status or timestamps.
type TaskData struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	CategoryID  ID         `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// WithDefaults fills absent optional fields.
func (d TaskData) WithDefaults() TaskData {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// NewTask builds a task from creation fields. Identity and creation-only
// fields are left for the store to assign.
func (d TaskData) NewTask() Task {
	d = d.WithDefaults()
	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		CategoryID:  d.CategoryID,
	}
	if d.DueDate != nil {
		t.DueDate = *d.DueDate
	}
	return t
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
