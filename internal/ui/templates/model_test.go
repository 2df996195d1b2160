package templates

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
	"github.com/nhle/taskboard/internal/store"
)

func setup(t *testing.T) (Model, *service.TemplateService) {
	t.Helper()
	svc := service.NewTemplateService(store.NewMemoryStore(), logging.Discard())
	ctx := context.Background()
	require.NotNil(t, svc.Create(ctx, model.Template{Name: "Standup", TaskData: model.TaskData{Title: "Daily standup"}}))
	require.NotNil(t, svc.Create(ctx, model.Template{Name: "Groceries", Description: "weekly shop", TaskData: model.TaskData{Title: "Shop"}}))

	m := New(svc, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.Load()())
	return m, svc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadListsTemplates(t *testing.T) {
	m, _ := setup(t)
	assert.Len(t, m.Templates(), 2)
	assert.Contains(t, m.View(), "Standup")
}

func TestSearchNarrowsList(t *testing.T) {
	m, _ := setup(t)
	m, _ = m.Update(runes("/"))
	m, cmd := m.Update(runes("weekly"))
	require.NotNil(t, cmd)

	m, _ = m.Update(m.Load()())
	require.Len(t, m.Templates(), 1)
	assert.Equal(t, "Groceries", m.Templates()[0].Name)
}

func TestStaleLoadIsIgnored(t *testing.T) {
	m, _ := setup(t)
	m, _ = m.Update(LoadedMsg{Query: "old", Templates: nil})
	assert.Len(t, m.Templates(), 2)
}

func TestUseAndDelete(t *testing.T) {
	m, svc := setup(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	use, ok := cmd().(UseMsg)
	require.True(t, ok)
	assert.Equal(t, m.Templates()[0].ID, use.Template.ID)

	m, cmd = m.Update(runes("d"))
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	assert.Contains(t, m.View(), "Template deleted")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Len(t, m.Templates(), 1)
	assert.Len(t, svc.GetAll(context.Background()), 1)
}

func TestEscCloses(t *testing.T) {
	m, _ := setup(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
