package service

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// CategoryService is the resource store for categories.
type CategoryService struct {
	backend store.CategoryBackend
	logger  *log.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(backend store.CategoryBackend, logger *log.Logger) *CategoryService {
	return &CategoryService{backend: backend, logger: logger}
}

// LoadAll returns every category or the backend error.
func (s *CategoryService) LoadAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		s.logger.Error("fetching categories", "err", err)
		return nil, err
	}
	return categories, nil
}

// GetAll is LoadAll with failures reported as an empty list.
func (s *CategoryService) GetAll(ctx context.Context) []model.Category {
	categories, err := s.LoadAll(ctx)
	if err != nil {
		return []model.Category{}
	}
	return categories
}

// GetByID returns the category or nil.
func (s *CategoryService) GetByID(ctx context.Context, id model.ID) *model.Category {
	c, err := s.backend.GetCategory(ctx, id)
	if err != nil {
		logLookup(s.logger, "category", id, err)
		return nil
	}
	return c
}

// Create stores a new category with a zero task count. An empty color
// gets model.DefaultCategoryColor.
func (s *CategoryService) Create(ctx context.Context, c model.Category) *model.Category {
	c.ID = model.NoID
	c.TaskCount = 0
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}

	created, err := s.backend.CreateCategory(ctx, c)
	if err != nil {
		s.logger.Error("creating category", "name", c.Name, "err", err)
		return nil
	}
	return created
}

// Update applies patch and returns the updated category, or nil.
func (s *CategoryService) Update(ctx context.Context, id model.ID, patch model.CategoryPatch) *model.Category {
	c, err := s.backend.UpdateCategory(ctx, id, patch)
	if err != nil {
		logLookup(s.logger, "category", id, err)
		return nil
	}
	return c
}

// Delete removes a category and reports whether it existed.
func (s *CategoryService) Delete(ctx context.Context, id model.ID) bool {
	if err := s.backend.DeleteCategory(ctx, id); err != nil {
		logLookup(s.logger, "category", id, err)
		return false
	}
	return true
}

// UpdateTaskCount stores a new denormalized task count.
func (s *CategoryService) UpdateTaskCount(ctx context.Context, id model.ID, count int) *model.Category {
	return s.Update(ctx, id, model.CategoryPatch{TaskCount: &count})
}
