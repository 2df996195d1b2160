package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

func newServices(t *testing.T) (*TaskService, *CategoryService, *TemplateService) {
	t.Helper()
	mem := store.NewMemoryStore()
	logger := logging.Discard()
	templates := NewTemplateService(mem, logger)
	return NewTaskService(mem, templates, logger), NewCategoryService(mem, logger), templates
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func TestTaskCreateForcesCreationFields(t *testing.T) {
	tasks, _, _ := newServices(t)
	fixed := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	tasks.now = func() time.Time { return fixed }

	created := tasks.Create(context.Background(), model.TaskData{Title: "Call plumber", DueDate: day(2024, 2, 3)})
	require.NotNil(t, created)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Nil(t, created.CompletedAt)
	assert.Equal(t, fixed, created.CreatedAt)
	assert.Equal(t, model.PriorityMedium, created.Priority)
}

func TestTaskIDsStrictlyIncrease(t *testing.T) {
	tasks, _, _ := newServices(t)
	ctx := context.Background()

	a := tasks.Create(ctx, model.TaskData{Title: "a"})
	b := tasks.Create(ctx, model.TaskData{Title: "b"})
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Greater(t, b.ID, a.ID)
}

func TestTaskGetAllSortsByDueDate(t *testing.T) {
	tasks, _, _ := newServices(t)
	ctx := context.Background()

	tasks.Create(ctx, model.TaskData{Title: "later", DueDate: day(2030, 5, 2)})
	tasks.Create(ctx, model.TaskData{Title: "undated"})
	tasks.Create(ctx, model.TaskData{Title: "sooner", DueDate: day(2030, 5, 1)})

	all := tasks.GetAll(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"sooner", "later", "undated"},
		[]string{all[0].Title, all[1].Title, all[2].Title})
}

func TestTaskCompleteCycle(t *testing.T) {
	tasks, _, _ := newServices(t)
	ctx := context.Background()
	created := tasks.Create(ctx, model.TaskData{Title: "Cycle"})
	require.NotNil(t, created)

	done := tasks.MarkComplete(ctx, created.ID)
	require.NotNil(t, done)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	reopened := tasks.MarkPending(ctx, created.ID)
	require.NotNil(t, reopened)
	assert.Equal(t, model.StatusPending, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
}

func TestTaskUpdateEmptyPatchIsIdentity(t *testing.T) {
	tasks, _, _ := newServices(t)
	ctx := context.Background()
	created := tasks.Create(ctx, model.TaskData{Title: "Same", Priority: model.PriorityHigh})
	require.NotNil(t, created)

	got := tasks.Update(ctx, created.ID, model.TaskPatch{})
	require.NotNil(t, got)
	assert.Equal(t, *created, *got)
}

func TestTaskMissingRecords(t *testing.T) {
	tasks, _, _ := newServices(t)
	ctx := context.Background()

	assert.Nil(t, tasks.GetByID(ctx, 99))
	assert.Nil(t, tasks.Update(ctx, 99, model.TaskPatch{Title: model.Ptr("x")}))
	assert.Nil(t, tasks.MarkComplete(ctx, 99))

	created := tasks.Create(ctx, model.TaskData{Title: "Once"})
	require.NotNil(t, created)
	assert.True(t, tasks.Delete(ctx, created.ID))
	assert.False(t, tasks.Delete(ctx, created.ID))
}

func TestTaskFilters(t *testing.T) {
	tasks, categories, _ := newServices(t)
	ctx := context.Background()
	work := categories.Create(ctx, model.Category{Name: "Work"})
	require.NotNil(t, work)

	a := tasks.Create(ctx, model.TaskData{Title: "a", CategoryID: work.ID})
	tasks.Create(ctx, model.TaskData{Title: "b"})
	require.NotNil(t, tasks.MarkComplete(ctx, a.ID))

	byCategory := tasks.GetByCategory(ctx, work.ID)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "a", byCategory[0].Title)

	pending := tasks.GetByStatus(ctx, model.StatusPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Title)
}

func TestTaskDetachCategory(t *testing.T) {
	tasks, categories, _ := newServices(t)
	ctx := context.Background()
	home := categories.Create(ctx, model.Category{Name: "Home"})
	require.NotNil(t, home)
	tasks.Create(ctx, model.TaskData{Title: "a", CategoryID: home.ID})
	tasks.Create(ctx, model.TaskData{Title: "b", CategoryID: home.ID})
	tasks.Create(ctx, model.TaskData{Title: "c"})

	assert.Equal(t, 2, tasks.DetachCategory(ctx, home.ID))
	assert.Empty(t, tasks.GetByCategory(ctx, home.ID))
}

func TestSaveAndLoadTemplateRoundTrip(t *testing.T) {
	tasks, _, templates := newServices(t)
	ctx := context.Background()
	data := model.TaskData{
		Title:       "Weekly review",
		Description: "Look back",
		Priority:    model.PriorityHigh,
		CategoryID:  4,
		DueDate:     day(2030, 1, 4),
	}

	saved := tasks.SaveAsTemplate(ctx, data, "")
	require.NotNil(t, saved)
	assert.Equal(t, "Weekly review", saved.Name)

	stored := templates.GetByID(ctx, saved.ID)
	require.NotNil(t, stored)
	loaded := tasks.LoadTemplate(stored.TaskData)

	assert.Equal(t, data.Title, loaded.Title)
	assert.Equal(t, data.Description, loaded.Description)
	assert.Equal(t, data.Priority, loaded.Priority)
	assert.Equal(t, data.CategoryID, loaded.CategoryID)
	require.NotNil(t, loaded.DueDate)
	assert.True(t, data.DueDate.Equal(*loaded.DueDate))

	// The loaded copy is independent of the template.
	*loaded.DueDate = loaded.DueDate.AddDate(1, 0, 0)
	assert.True(t, data.DueDate.Equal(*stored.TaskData.DueDate))
}

func TestTemplateDefaults(t *testing.T) {
	_, _, templates := newServices(t)
	ctx := context.Background()

	first := templates.Create(ctx, model.Template{})
	require.NotNil(t, first)
	assert.Equal(t, "Template 1", first.Name)
	assert.Equal(t, model.PriorityMedium, first.TaskData.Priority)
	assert.Equal(t, "", first.Description)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second := templates.Create(ctx, model.Template{})
	require.NotNil(t, second)
	assert.Equal(t, "Template 2", second.Name)

	named := templates.Create(ctx, model.Template{Name: "  Standup  "})
	require.NotNil(t, named)
	assert.Equal(t, "Standup", named.Name)
}

func TestTemplateUpdateBumpsUpdatedAt(t *testing.T) {
	_, _, templates := newServices(t)
	ctx := context.Background()
	created := templates.Create(ctx, model.Template{Name: "Plan"})
	require.NotNil(t, created)

	updated := templates.Update(ctx, created.ID, model.TemplatePatch{Description: model.Ptr("Monthly")})
	require.NotNil(t, updated)
	assert.Equal(t, "Monthly", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	assert.Nil(t, templates.Update(ctx, 404, model.TemplatePatch{Name: model.Ptr("x")}))
}

func TestTemplateSearchAndCategory(t *testing.T) {
	_, _, templates := newServices(t)
	ctx := context.Background()
	templates.Create(ctx, model.Template{Name: "Groceries", TaskData: model.TaskData{Title: "Buy milk", CategoryID: 2}})
	templates.Create(ctx, model.Template{Name: "Report", Description: "Monthly numbers", TaskData: model.TaskData{Title: "Draft"}})

	assert.Len(t, templates.Search(ctx, ""), 2)
	assert.Len(t, templates.Search(ctx, "MILK"), 1)
	assert.Len(t, templates.Search(ctx, "monthly"), 1)
	assert.Empty(t, templates.Search(ctx, "nothing"))

	byCategory := templates.GetByCategory(ctx, 2)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Groceries", byCategory[0].Name)
}

func TestCategoryCreateDefaults(t *testing.T) {
	_, categories, _ := newServices(t)
	ctx := context.Background()

	c := categories.Create(ctx, model.Category{Name: "Work", TaskCount: 12})
	require.NotNil(t, c)
	assert.Equal(t, model.DefaultCategoryColor, c.Color)
	assert.Equal(t, 0, c.TaskCount)

	counted := categories.UpdateTaskCount(ctx, c.ID, 3)
	require.NotNil(t, counted)
	assert.Equal(t, 3, counted.TaskCount)

	assert.True(t, categories.Delete(ctx, c.ID))
	assert.False(t, categories.Delete(ctx, c.ID))
	assert.Nil(t, categories.GetByID(ctx, c.ID))
}

// failingBackend fails every call.
type failingBackend struct{ store.Backend }

var errBackend = errors.New("backend unavailable")

func (failingBackend) ListTasks(context.Context) ([]model.Task, error) { return nil, errBackend }
func (failingBackend) CreateTask(context.Context, model.Task) (*model.Task, error) {
	return nil, errBackend
}
func (failingBackend) ListCategories(context.Context) ([]model.Category, error) {
	return nil, errBackend
}
func (failingBackend) ListTemplates(context.Context) ([]model.Template, error) {
	return nil, errBackend
}

func TestBackendFailuresAreSwallowed(t *testing.T) {
	logger := logging.Discard()
	b := failingBackend{}
	tasks := NewTaskService(b, nil, logger)
	categories := NewCategoryService(b, logger)
	templates := NewTemplateService(b, logger)
	ctx := context.Background()

	assert.NotNil(t, tasks.GetAll(ctx))
	assert.Empty(t, tasks.GetAll(ctx))
	assert.Nil(t, tasks.Create(ctx, model.TaskData{Title: "x"}))
	assert.Empty(t, categories.GetAll(ctx))
	assert.Empty(t, templates.GetAll(ctx))
	assert.Nil(t, templates.Create(ctx, model.Template{}))
	assert.Nil(t, tasks.SaveAsTemplate(ctx, model.TaskData{Title: "x"}, ""))

	_, err := tasks.LoadAll(ctx)
	assert.ErrorIs(t, err, errBackend)
}
