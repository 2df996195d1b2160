package model

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#5B47E0"

// Category groups tasks.
//
// TaskCount is denormalized and not maintained by the stores; callers derive
// it from the task list (see filter.CountByCategory).
type Category struct {
	ID        ID     `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Color     string `json:"color" db:"color"`
	TaskCount int    `json:"taskCount" db:"task_count"`
}
