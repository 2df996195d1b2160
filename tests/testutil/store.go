package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Date returns local midnight of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// MustCreateCategory creates a category or fails the test.
func MustCreateCategory(t *testing.T, b store.CategoryBackend, name string) model.Category {
	t.Helper()

	c, err := b.CreateCategory(context.Background(), model.Category{Name: name})
	if err != nil {
		t.Fatalf("creating category %q: %v", name, err)
	}
	return *c
}

// MustCreateTask creates a task or fails the test.
func MustCreateTask(t *testing.T, b store.TaskBackend, task model.Task) model.Task {
	t.Helper()

	created, err := b.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("creating task %q: %v", task.Title, err)
	}
	return *created
}
