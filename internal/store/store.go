package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/model"
)

// ErrNotFound is returned when no record has the requested identity.
var ErrNotFound = errors.New("not found")

// ErrUnknownCategory is returned when a task references a category that
// does not exist.
var ErrUnknownCategory = errors.New("unknown category")

// TaskBackend persists tasks.
//
// CreateTask assigns the identity and forces the creation-only fields:
// status pending, no completion time, and CreatedAt when unset. UpdateTask
// re-derives CompletedAt from the resulting status.
type TaskBackend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id model.ID) (*model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, id model.ID, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
}

// CategoryBackend persists categories. Deleting a category detaches every
// task that referenced it.
type CategoryBackend interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id model.ID) (*model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, id model.ID, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id model.ID) error
}

// TemplateBackend persists task templates.
type TemplateBackend interface {
	ListTemplates(ctx context.Context) ([]model.Template, error)
	GetTemplate(ctx context.Context, id model.ID) (*model.Template, error)
	CreateTemplate(ctx context.Context, t model.Template) (*model.Template, error)
	UpdateTemplate(ctx context.Context, id model.ID, patch model.TemplatePatch) (*model.Template, error)
	DeleteTemplate(ctx context.Context, id model.ID) error
}

// Backend is the full persistence surface used by the services.
type Backend interface {
	TaskBackend
	CategoryBackend
	TemplateBackend
	Close() error
}

// KV is a string key/value store.
type KV interface {
	GetValue(ctx context.Context, key string) (value string, ok bool, err error)
	SetValue(ctx context.Context, key, value string) error
}
