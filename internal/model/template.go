package model

import "time"

// Template is a named, reusable snapshot of task creation fields.
type Template struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TaskData    TaskData  `json:"taskData"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
