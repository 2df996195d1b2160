package session

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// TaskService is the subset of service.TaskService a Tasks session needs.
type TaskService interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, data model.TaskData) *model.Task
	Update(ctx context.Context, id model.ID, patch model.TaskPatch) *model.Task
	Delete(ctx context.Context, id model.ID) bool
	MarkComplete(ctx context.Context, id model.ID) *model.Task
	MarkPending(ctx context.Context, id model.ID) *model.Task
}

// Tasks is the task session.
type Tasks struct {
	base
	svc   TaskService
	tasks []model.Task
}

// NewTasks creates an idle task session.
func NewTasks(svc TaskService) *Tasks {
	return &Tasks{svc: svc}
}

// Load fetches every task, replacing the cache.
func (s *Tasks) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	tasks, err := s.svc.LoadAll(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.errMsg = "Failed to load tasks. Please try again."
	} else {
		s.state = StateReady
		s.tasks = tasks
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	return nil
}

// Tasks returns a copy of the cached tasks.
func (s *Tasks) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find returns the cached task with id.
func (s *Tasks) Find(id model.ID) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Create stores a new task and appends it to the cache.
func (s *Tasks) Create(ctx context.Context, data model.TaskData) (*model.Task, error) {
	created := s.svc.Create(ctx, data)
	if created == nil {
		return nil, s.fail("Failed to create task. Please try again.")
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, *created)
	s.mu.Unlock()
	s.notify()
	return created, nil
}

// Update applies patch and replaces the cached task.
func (s *Tasks) Update(ctx context.Context, id model.ID, patch model.TaskPatch) (*model.Task, error) {
	return s.replace(s.svc.Update(ctx, id, patch), "Failed to update task. Please try again.")
}

// MarkComplete completes the task and replaces the cached copy.
func (s *Tasks) MarkComplete(ctx context.Context, id model.ID) (*model.Task, error) {
	return s.replace(s.svc.MarkComplete(ctx, id), "Failed to complete task. Please try again.")
}

// MarkPending reopens the task and replaces the cached copy.
func (s *Tasks) MarkPending(ctx context.Context, id model.ID) (*model.Task, error) {
	return s.replace(s.svc.MarkPending(ctx, id), "Failed to reopen task. Please try again.")
}

// Toggle flips the completion state of a cached task.
func (s *Tasks) Toggle(ctx context.Context, id model.ID) (*model.Task, error) {
	t, ok := s.Find(id)
	if ok && t.IsCompleted() {
		return s.MarkPending(ctx, id)
	}
	return s.MarkComplete(ctx, id)
}

// Delete removes the task and drops it from the cache. A task the service
// did not delete is reported as a failure.
func (s *Tasks) Delete(ctx context.Context, id model.ID) error {
	if !s.svc.Delete(ctx, id) {
		return s.fail("Failed to delete task. Please try again.")
	}
	s.mu.Lock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()
	s.notify()
	return nil
}

// DetachCategory clears categoryID from cached tasks, mirroring a
// category deletion that the backend already applied.
func (s *Tasks) DetachCategory(categoryID model.ID) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].CategoryID == categoryID {
			s.tasks[i].CategoryID = model.NoID
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Tasks) replace(updated *model.Task, msg string) (*model.Task, error) {
	if updated == nil {
		return nil, s.fail(msg)
	}
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == updated.ID {
			s.tasks[i] = *updated
		}
	}
	s.mu.Unlock()
	s.notify()
	return updated, nil
}
