package categorymgr

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/store"
)

func setup(t *testing.T) (Model, *session.Categories, *session.Tasks) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	logger := logging.Discard()
	categories := session.NewCategories(service.NewCategoryService(mem, logger))
	tasks := session.NewTasks(service.NewTaskService(mem, nil, logger))

	work, err := categories.Create(ctx, model.Category{Name: "Work"})
	require.NoError(t, err)
	_, err = categories.Create(ctx, model.Category{Name: "Home"})
	require.NoError(t, err)
	require.NoError(t, categories.Load(ctx))
	require.NoError(t, tasks.Load(ctx))
	_, err = tasks.Create(ctx, model.TaskData{Title: "Report", CategoryID: work.ID})
	require.NoError(t, err)

	return New(categories, tasks, keys.DefaultKeyMap(), 80, 24), categories, tasks
}

func TestRowsCarryDerivedTaskCounts(t *testing.T) {
	m, _, _ := setup(t)
	require.Len(t, m.rows, 2)

	counts := map[string]int{}
	for _, c := range m.rows {
		counts[c.Name] = c.TaskCount
	}
	assert.Equal(t, map[string]int{"Work": 1, "Home": 0}, counts)
	assert.Contains(t, m.View(), "Work (1)")
}

func TestDeleteDetachesCachedTasks(t *testing.T) {
	m, categories, tasks := setup(t)

	var work model.Category
	for _, c := range m.rows {
		if c.Name == "Work" {
			work = c
		}
	}
	require.True(t, work.ID.IsSet())

	msg := m.delete(work.ID)()
	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, ChangedMsg{}, cmd())
	assert.Equal(t, "Category deleted", m.statusMsg)

	_, ok := categories.Find(work.ID)
	assert.False(t, ok)
	assert.Len(t, m.rows, 1)
	for _, task := range tasks.Tasks() {
		assert.Equal(t, model.NoID, task.CategoryID)
	}
}

func TestSaveCreatesAndUpdates(t *testing.T) {
	m, categories, _ := setup(t)

	m.fb.name = "  Errands "
	m.fb.color = ""
	m, _ = m.Update(m.save()())
	assert.Equal(t, "Category saved", m.statusMsg)

	var errands model.Category
	for _, c := range categories.Categories() {
		if c.Name == "Errands" {
			errands = c
		}
	}
	require.True(t, errands.ID.IsSet())
	assert.Equal(t, model.DefaultCategoryColor, errands.Color)

	m.editingID = errands.ID
	m.fb.name = "Chores"
	m.fb.color = "#00AA00"
	m, _ = m.Update(m.save()())
	updated, ok := categories.Find(errands.ID)
	require.True(t, ok)
	assert.Equal(t, "Chores", updated.Name)
	assert.Equal(t, "#00AA00", updated.Color)
}

func TestListNavigationAndClose(t *testing.T) {
	m, _, _ := setup(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, m.selectedIdx)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 0, m.selectedIdx)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, validateColor(""))
	assert.NoError(t, validateColor("#a1B2c3"))
	assert.Error(t, validateColor("red"))
	assert.Error(t, validateColor("#12345"))
}
