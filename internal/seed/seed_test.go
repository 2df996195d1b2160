package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
)

func newServices() Services {
	mem := store.NewMemoryStore()
	logger := logging.Discard()
	templates := service.NewTemplateService(mem, logger)
	return Services{
		Categories: service.NewCategoryService(mem, logger),
		Tasks:      service.NewTaskService(mem, templates, logger),
		Templates:  templates,
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"missing title", `{"tasks":[{"priority":"high"}]}`, "/tasks/0"},
		{"bad priority", `{"tasks":[{"title":"x","priority":"urgent"}]}`, "/tasks/0/priority"},
		{"bad status", `{"tasks":[{"title":"x","status":"done"}]}`, "/tasks/0/status"},
		{"bad color", `{"categories":[{"name":"Work","color":"red"}]}`, "/categories/0/color"},
		{"bad due date", `{"tasks":[{"title":"x","dueDate":"tomorrow"}]}`, "/tasks/0/dueDate"},
		{"unknown key", `{"projects":[]}`, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			paths := make([]string, 0, len(ve.Problems))
			for _, p := range ve.Problems {
				paths = append(paths, p.Path)
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"tasks": [`))
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestLoadAcceptsStringIDs(t *testing.T) {
	doc, err := Load(strings.NewReader(`{
		"categories": [{"id": "7", "name": "Home"}],
		"tasks": [{"title": "Water plants", "categoryId": "7"}]
	}`))
	require.NoError(t, err)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, model.ID(7), doc.Categories[0].ID)
	assert.Equal(t, model.ID(7), doc.Tasks[0].CategoryID)
}

func TestParseDueDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.Local)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"+2d", time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)},
		{"-1d", time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local)},
		{"+0d", time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)},
		{"2024-04-01", time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDueDate(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}

	rfc, err := ParseDueDate("2024-04-01T09:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, rfc.Equal(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)))

	for _, bad := range []string{"+xd", "--3d", "+-3d", "-+3d", "+d"} {
		_, err = ParseDueDate(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestApplyResolvesCategories(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)

	// Pre-existing category shifts the IDs the import will be assigned.
	require.NotNil(t, svc.Categories.Create(ctx, model.Category{Name: "Existing"}))

	doc, err := Load(strings.NewReader(`{
		"categories": [{"id": 1, "name": "Work", "color": "#112233"}],
		"tasks": [
			{"title": "Report", "categoryId": 1, "dueDate": "+1d"},
			{"title": "Orphan", "categoryId": 99},
			{"title": "Done", "status": "completed"}
		],
		"templates": [{"name": "Standup", "taskData": {"title": "Standup", "categoryId": 1}}]
	}`))
	require.NoError(t, err)

	sum := Apply(ctx, doc, svc, now)
	assert.Equal(t, 1, sum.Categories)
	assert.Equal(t, 3, sum.Tasks)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, sum.Templates)
	assert.Empty(t, sum.Failures)

	var work *model.Category
	for _, c := range svc.Categories.GetAll(ctx) {
		if c.Name == "Work" {
			c := c
			work = &c
		}
	}
	require.NotNil(t, work)
	assert.Equal(t, "#112233", work.Color)

	byTitle := map[string]model.Task{}
	for _, task := range svc.Tasks.GetAll(ctx) {
		byTitle[task.Title] = task
	}
	assert.Equal(t, work.ID, byTitle["Report"].CategoryID)
	assert.True(t, byTitle["Report"].DueDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, model.NoID, byTitle["Orphan"].CategoryID)
	assert.Equal(t, model.StatusCompleted, byTitle["Done"].Status)
	assert.NotNil(t, byTitle["Done"].CompletedAt)

	templates := svc.Templates.GetAll(ctx)
	require.Len(t, templates, 1)
	assert.Equal(t, work.ID, templates[0].TaskData.CategoryID)
	assert.Equal(t, model.PriorityMedium, templates[0].TaskData.Priority)
}

func TestDemoDocumentLoads(t *testing.T) {
	doc, err := Demo()
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Categories)
	assert.NotEmpty(t, doc.Tasks)

	sum := Apply(context.Background(), doc, newServices(), time.Now())
	assert.Empty(t, sum.Failures)
	assert.Equal(t, len(doc.Tasks), sum.Tasks)
}
