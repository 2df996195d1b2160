// Package service implements the resource stores used by the UI and the
// record API. Every operation logs backend failures and reports them as an
// absent result (nil, false or an empty list) instead of an error; LoadAll
// variants additionally return the error for callers that surface it.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// TaskService is the resource store for tasks.
type TaskService struct {
	backend   store.TaskBackend
	templates *TemplateService
	logger    *log.Logger
	now       func() time.Time
}

// NewTaskService creates a task service. templates may be nil, in which
// case SaveAsTemplate always fails.
func NewTaskService(backend store.TaskBackend, templates *TemplateService, logger *log.Logger) *TaskService {
	return &TaskService{
		backend:   backend,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

// LoadAll returns every task sorted by due date ascending. Tasks without
// a due date come last; ties keep backend order.
func (s *TaskService) LoadAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		s.logger.Error("fetching tasks", "err", err)
		return nil, err
	}
	SortByDueDate(tasks)
	return tasks, nil
}

// GetAll is LoadAll with failures reported as an empty list.
func (s *TaskService) GetAll(ctx context.Context) []model.Task {
	tasks, err := s.LoadAll(ctx)
	if err != nil {
		return []model.Task{}
	}
	return tasks
}

// GetByID returns the task or nil if it does not exist or cannot be read.
func (s *TaskService) GetByID(ctx context.Context, id model.ID) *model.Task {
	task, err := s.backend.GetTask(ctx, id)
	if err != nil {
		logLookup(s.logger, "task", id, err)
		return nil
	}
	return task
}

// Create stores a new task built from data. The new task is always pending
// with no completion time, created now.
func (s *TaskService) Create(ctx context.Context, data model.TaskData) *model.Task {
	task := data.NewTask()
	task.CreatedAt = s.now()
	task.Status = model.StatusPending
	task.CompletedAt = nil

	created, err := s.backend.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error("creating task", "title", data.Title, "err", err)
		return nil
	}
	s.logger.Debug("created task", "id", created.ID)
	return created
}

// Update applies patch and returns the updated task, or nil when the task
// does not exist or the write fails. An empty patch returns the task
// unchanged.
func (s *TaskService) Update(ctx context.Context, id model.ID, patch model.TaskPatch) *model.Task {
	task, err := s.backend.UpdateTask(ctx, id, patch)
	if err != nil {
		logLookup(s.logger, "task", id, err)
		return nil
	}
	return task
}

// Delete removes a task and reports whether it existed.
func (s *TaskService) Delete(ctx context.Context, id model.ID) bool {
	if err := s.backend.DeleteTask(ctx, id); err != nil {
		logLookup(s.logger, "task", id, err)
		return false
	}
	return true
}

// MarkComplete sets the task completed, stamping its completion time.
func (s *TaskService) MarkComplete(ctx context.Context, id model.ID) *model.Task {
	return s.Update(ctx, id, model.TaskPatch{Status: model.Ptr(model.StatusCompleted)})
}

// MarkPending reopens the task and clears its completion time.
func (s *TaskService) MarkPending(ctx context.Context, id model.ID) *model.Task {
	return s.Update(ctx, id, model.TaskPatch{Status: model.Ptr(model.StatusPending)})
}

// GetByCategory returns the tasks filed under categoryID.
func (s *TaskService) GetByCategory(ctx context.Context, categoryID model.ID) []model.Task {
	var out []model.Task
	for _, t := range s.GetAll(ctx) {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// GetByStatus returns the tasks with the given status.
func (s *TaskService) GetByStatus(ctx context.Context, status model.Status) []model.Task {
	var out []model.Task
	for _, t := range s.GetAll(ctx) {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// DetachCategory clears categoryID from every task that still references
// it and returns how many tasks changed.
func (s *TaskService) DetachCategory(ctx context.Context, categoryID model.ID) int {
	detached := 0
	for _, t := range s.GetByCategory(ctx, categoryID) {
		if s.Update(ctx, t.ID, model.TaskPatch{CategoryID: model.Ptr(model.NoID)}) != nil {
			detached++
		}
	}
	return detached
}

// SaveAsTemplate stores data as a new template named name.
func (s *TaskService) SaveAsTemplate(ctx context.Context, data model.TaskData, name string) *model.Template {
	if s.templates == nil {
		s.logger.Error("saving template", "err", "no template store configured")
		return nil
	}
	return s.templates.Create(ctx, model.Template{Name: name, TaskData: data})
}

// LoadTemplate returns an independent copy of data with defaults applied,
// ready to pre-fill a form.
func (s *TaskService) LoadTemplate(data model.TaskData) model.TaskData {
	out := data.WithDefaults()
	if data.DueDate != nil {
		due := *data.DueDate
		out.DueDate = &due
	}
	return out
}

// SortByDueDate orders tasks soonest due first, undated last, in place.
func SortByDueDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b)
	})
}

// logLookup logs a failed single-record operation. Missing records are
// expected and only logged at debug level.
func logLookup(logger *log.Logger, kind string, id model.ID, err error) {
	if errors.Is(err, store.ErrNotFound) {
		logger.Debug(kind+" not found", "id", id)
		return
	}
	logger.Error(kind+" operation failed", "id", id, "err", err)
}
