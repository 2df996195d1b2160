package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// MemoryStore implements Backend in process memory. It is used for the
// "memory" backend, for the HTTP API in tests, and as a demo dataset.
type MemoryStore struct {
	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
	now        func() time.Time

	*KVTemplateStore
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:             time.Now,
		KVTemplateStore: NewKVTemplateStore(NewMemoryKV()),
	}
}

// Seed replaces the store contents with the given records, keeping their
// identities. Intended for fixtures.
func (m *MemoryStore) Seed(categories []model.Category, tasks []model.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append([]model.Category(nil), categories...)
	m.tasks = append([]model.Task(nil), tasks...)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// ListTasks returns copies of all tasks in insertion order.
func (m *MemoryStore) ListTasks(_ context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = copyTask(t)
	}
	return out, nil
}

// GetTask returns a copy of the task with the given ID.
func (m *MemoryStore) GetTask(_ context.Context, id model.ID) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.taskIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t := copyTask(m.tasks[i])
	return &t, nil
}

// CreateTask appends a task with identity max+1.
func (m *MemoryStore) CreateTask(_ context.Context, task model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCategory(task.CategoryID); err != nil {
		return nil, err
	}

	var maxID model.ID
	for _, t := range m.tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	task.ID = maxID + 1
	task.Status = model.StatusPending
	task.CompletedAt = nil
	if task.CreatedAt.IsZero() {
		task.CreatedAt = m.now()
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	m.tasks = append(m.tasks, task)
	out := copyTask(task)
	return &out, nil
}

// UpdateTask applies patch to the stored task.
func (m *MemoryStore) UpdateTask(_ context.Context, id model.ID, patch model.TaskPatch) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if !patch.IsEmpty() {
		if patch.CategoryID != nil {
			if err := m.checkCategory(*patch.CategoryID); err != nil {
				return nil, err
			}
		}
		m.tasks[i] = patch.Apply(m.tasks[i], m.now())
	}
	out := copyTask(m.tasks[i])
	return &out, nil
}

// DeleteTask removes a task.
func (m *MemoryStore) DeleteTask(_ context.Context, id model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

// ListCategories returns copies of all categories ordered by name.
func (m *MemoryStore) ListCategories(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Category{}, m.categories...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// GetCategory returns a copy of the category with the given ID.
func (m *MemoryStore) GetCategory(_ context.Context, id model.ID) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	c := m.categories[i]
	return &c, nil
}

// CreateCategory appends a category with identity max+1.
func (m *MemoryStore) CreateCategory(_ context.Context, c model.Category) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var maxID model.ID
	for _, existing := range m.categories {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	c.ID = maxID + 1
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}
	m.categories = append(m.categories, c)
	return &c, nil
}

// UpdateCategory applies patch to the stored category.
func (m *MemoryStore) UpdateCategory(_ context.Context, id model.ID, patch model.CategoryPatch) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	m.categories[i] = patch.Apply(m.categories[i])
	c := m.categories[i]
	return &c, nil
}

// DeleteCategory removes a category and clears it from every task.
func (m *MemoryStore) DeleteCategory(_ context.Context, id model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	m.categories = append(m.categories[:i], m.categories[i+1:]...)
	for j := range m.tasks {
		if m.tasks[j].CategoryID == id {
			m.tasks[j].CategoryID = model.NoID
		}
	}
	return nil
}

func (m *MemoryStore) taskIndex(id model.ID) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) categoryIndex(id model.ID) int {
	for i, c := range m.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) checkCategory(id model.ID) error {
	if !id.IsSet() || m.categoryIndex(id) >= 0 {
		return nil
	}
	return fmt.Errorf("category %s: %w", id, ErrUnknownCategory)
}

// copyTask detaches the CompletedAt pointer from the stored record.
func copyTask(t model.Task) model.Task {
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		t.CompletedAt = &done
	}
	return t
}
