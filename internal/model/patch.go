package model

import "time"

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	CategoryID  *ID        `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.CategoryID == nil && p.DueDate == nil
}

// Apply returns t with the patch applied. A status change re-derives
// CompletedAt so that it is set exactly when the task is completed.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case t.Status == StatusCompleted && t.CompletedAt == nil:
		done := now
		t.CompletedAt = &done
	case t.Status != StatusCompleted:
		t.CompletedAt = nil
	}
	return t
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name      *string `json:"name,omitempty"`
	Color     *string `json:"color,omitempty"`
	TaskCount *int    `json:"taskCount,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Color == nil && p.TaskCount == nil
}

// Apply returns c with the patch applied.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.TaskCount != nil {
		c.TaskCount = *p.TaskCount
	}
	return c
}

// TemplatePatch is a partial template update.
type TemplatePatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	TaskData    *TaskData `json:"taskData,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TemplatePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.TaskData == nil
}

// Apply returns t with the patch applied and UpdatedAt set to now.
func (p TemplatePatch) Apply(t Template, now time.Time) Template {
	if p.IsEmpty() {
		return t
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.TaskData != nil {
		t.TaskData = *p.TaskData
	}
	t.UpdatedAt = now
	return t
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }
