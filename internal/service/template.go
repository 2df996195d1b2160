package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// TemplateService is the resource store for task templates.
type TemplateService struct {
	backend store.TemplateBackend
	logger  *log.Logger
	now     func() time.Time
}

// NewTemplateService creates a template service.
func NewTemplateService(backend store.TemplateBackend, logger *log.Logger) *TemplateService {
	return &TemplateService{backend: backend, logger: logger, now: time.Now}
}

// LoadAll returns every template or the backend error.
func (s *TemplateService) LoadAll(ctx context.Context) ([]model.Template, error) {
	templates, err := s.backend.ListTemplates(ctx)
	if err != nil {
		s.logger.Error("fetching templates", "err", err)
		return nil, err
	}
	return templates, nil
}

// GetAll is LoadAll with failures reported as an empty list.
func (s *TemplateService) GetAll(ctx context.Context) []model.Template {
	templates, err := s.LoadAll(ctx)
	if err != nil {
		return []model.Template{}
	}
	return templates
}

// GetByID returns the template or nil.
func (s *TemplateService) GetByID(ctx context.Context, id model.ID) *model.Template {
	t, err := s.backend.GetTemplate(ctx, id)
	if err != nil {
		logLookup(s.logger, "template", id, err)
		return nil
	}
	return t
}

// Create stores a new template. A blank name falls back to the task title,
// then to "Template N" where N is one more than the number of stored
// templates. Missing task priority defaults to medium.
func (s *TemplateService) Create(ctx context.Context, t model.Template) *model.Template {
	t.ID = model.NoID
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		t.Name = strings.TrimSpace(t.TaskData.Title)
	}
	if t.Name == "" {
		existing, err := s.LoadAll(ctx)
		if err != nil {
			return nil
		}
		t.Name = fmt.Sprintf("Template %d", len(existing)+1)
	}
	t.TaskData = t.TaskData.WithDefaults()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	created, err := s.backend.CreateTemplate(ctx, t)
	if err != nil {
		s.logger.Error("creating template", "name", t.Name, "err", err)
		return nil
	}
	return created
}

// Update applies patch, bumping UpdatedAt, and returns the template or nil.
func (s *TemplateService) Update(ctx context.Context, id model.ID, patch model.TemplatePatch) *model.Template {
	t, err := s.backend.UpdateTemplate(ctx, id, patch)
	if err != nil {
		logLookup(s.logger, "template", id, err)
		return nil
	}
	return t
}

// Delete removes a template and reports whether it existed.
func (s *TemplateService) Delete(ctx context.Context, id model.ID) bool {
	if err := s.backend.DeleteTemplate(ctx, id); err != nil {
		logLookup(s.logger, "template", id, err)
		return false
	}
	return true
}

// Search returns templates whose name, description or task title contains
// query, ignoring case. An empty query matches everything.
func (s *TemplateService) Search(ctx context.Context, query string) []model.Template {
	q := strings.ToLower(strings.TrimSpace(query))
	all := s.GetAll(ctx)
	if q == "" {
		return all
	}

	var out []model.Template
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.TaskData.Title), q) {
			out = append(out, t)
		}
	}
	return out
}

// GetByCategory returns templates whose task data targets categoryID.
func (s *TemplateService) GetByCategory(ctx context.Context, categoryID model.ID) []model.Template {
	var out []model.Template
	for _, t := range s.GetAll(ctx) {
		if t.TaskData.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}
