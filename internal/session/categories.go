package session

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/model"
)

// CategoryService is the subset of service.CategoryService a Categories
// session needs.
type CategoryService interface {
	LoadAll(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c model.Category) *model.Category
	Update(ctx context.Context, id model.ID, patch model.CategoryPatch) *model.Category
	Delete(ctx context.Context, id model.ID) bool
}

// Categories is the category session.
type Categories struct {
	base
	svc        CategoryService
	categories []model.Category
}

// NewCategories creates an idle category session.
func NewCategories(svc CategoryService) *Categories {
	return &Categories{svc: svc}
}

// Load fetches every category, replacing the cache.
func (s *Categories) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	categories, err := s.svc.LoadAll(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.errMsg = "Failed to load categories. Please try again."
	} else {
		s.state = StateReady
		s.categories = categories
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	return nil
}

// Categories returns a copy of the cached categories.
func (s *Categories) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Find returns the cached category with id.
func (s *Categories) Find(id model.ID) (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// WithTaskCounts returns the cached categories with TaskCount derived
// from tasks.
func (s *Categories) WithTaskCounts(tasks []model.Task) []model.Category {
	counts := filter.CountByCategory(tasks)
	out := s.Categories()
	for i := range out {
		out[i].TaskCount = counts[out[i].ID]
	}
	return out
}

// Create stores a new category and appends it to the cache.
func (s *Categories) Create(ctx context.Context, c model.Category) (*model.Category, error) {
	created := s.svc.Create(ctx, c)
	if created == nil {
		return nil, s.fail("Failed to create category. Please try again.")
	}
	s.mu.Lock()
	s.categories = append(s.categories, *created)
	s.mu.Unlock()
	s.notify()
	return created, nil
}

// Update applies patch and replaces the cached category.
func (s *Categories) Update(ctx context.Context, id model.ID, patch model.CategoryPatch) (*model.Category, error) {
	updated := s.svc.Update(ctx, id, patch)
	if updated == nil {
		return nil, s.fail("Failed to update category. Please try again.")
	}
	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == updated.ID {
			s.categories[i] = *updated
		}
	}
	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// Delete removes the category and drops it from the cache.
func (s *Categories) Delete(ctx context.Context, id model.ID) error {
	if !s.svc.Delete(ctx, id) {
		return s.fail("Failed to delete category. Please try again.")
	}
	s.mu.Lock()
	kept := s.categories[:0:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.mu.Unlock()
	s.notify()
	return nil
}
