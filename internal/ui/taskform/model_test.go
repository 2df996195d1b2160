package taskform

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/form"
	"github.com/nhle/taskboard/internal/model"
)

type call struct {
	mode form.Mode
	id   model.ID
	data model.TaskData
}

func newForm(t *testing.T, err error) (*Model, *[]call) {
	t.Helper()
	var calls []call
	m := New(func(_ context.Context, mode form.Mode, id model.ID, data model.TaskData) error {
		calls = append(calls, call{mode, id, data})
		return err
	}, 80, 30)
	m.SetCategories([]model.Category{{ID: 4, Name: "Work"}})
	return &m, &calls
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(form.DateLayout)
}

func TestStartEditPrefillsFields(t *testing.T) {
	m, _ := newForm(t, nil)
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.Local)
	m.StartEdit(model.Task{ID: 9, Title: "Edit me", Priority: model.PriorityHigh, CategoryID: 4, DueDate: due})

	require.True(t, m.Active())
	f := m.Fields()
	assert.Equal(t, form.ModeEdit, f.Mode())
	assert.Equal(t, model.ID(9), f.EditID())
	assert.Equal(t, "Edit me", f.Title)
	assert.Equal(t, "4", f.CategoryID)
	assert.Equal(t, "2030-01-02", f.DueDate)
	assert.Contains(t, m.View(), "Edit Task")
}

func TestStartFromTemplate(t *testing.T) {
	m, _ := newForm(t, nil)
	m.StartFromTemplate(model.Template{Name: "Standup", TaskData: model.TaskData{Title: "Daily standup", CategoryID: 4}})

	f := m.Fields()
	assert.Equal(t, form.ModeCreate, f.Mode())
	assert.Equal(t, "Daily standup", f.Title)
	assert.Equal(t, model.PriorityMedium, f.Priority)
	assert.Contains(t, m.View(), "Loaded template Standup")
}

func TestSubmitSuccessClosesForm(t *testing.T) {
	m, calls := newForm(t, nil)
	m.StartCreate()
	m.Fields().Title = "Ship it"
	m.Fields().CategoryID = "4"
	m.Fields().DueDate = tomorrow()

	msg := m.submitCmd()()
	submitted, ok := msg.(SubmittedMsg)
	require.True(t, ok)
	require.NoError(t, submitted.Err)
	require.Len(t, *calls, 1)
	assert.Equal(t, form.ModeCreate, (*calls)[0].mode)
	assert.Equal(t, "Ship it", (*calls)[0].data.Title)
	assert.Equal(t, model.ID(4), (*calls)[0].data.CategoryID)

	next, cmd := m.Update(submitted)
	assert.False(t, next.Active())
	require.NotNil(t, cmd)
	assert.Equal(t, SavedMsg{Mode: form.ModeCreate}, cmd())
}

func TestSubmitValidationErrorKeepsFormOpen(t *testing.T) {
	m, calls := newForm(t, nil)
	m.StartCreate()

	submitted := m.submitCmd()().(SubmittedMsg)
	var errs form.Errors
	require.True(t, errors.As(submitted.Err, &errs))
	assert.Empty(t, *calls)

	next, _ := m.Update(submitted)
	assert.True(t, next.Active())
	assert.Contains(t, next.Err(), "Title is required")
	assert.Contains(t, next.Err(), "Category is required")
}

func TestSubmitBackendErrorKeepsValues(t *testing.T) {
	m, _ := newForm(t, errors.New("boom"))
	m.StartCreate()
	m.Fields().Title = "Keep me"
	m.Fields().CategoryID = "4"
	m.Fields().DueDate = tomorrow()

	submitted := m.submitCmd()().(SubmittedMsg)
	require.Error(t, submitted.Err)

	next, _ := m.Update(submitted)
	assert.True(t, next.Active())
	assert.Contains(t, next.Err(), "boom")
	assert.Equal(t, "Keep me", next.Fields().Title)
}

func TestSaveTemplateShortcut(t *testing.T) {
	m, _ := newForm(t, nil)
	m.StartCreate()
	ctrlT := tea.KeyMsg{Type: tea.KeyCtrlT}

	next, cmd := m.Update(ctrlT)
	assert.Nil(t, cmd)
	assert.Equal(t, form.ErrTitleRequired.Error(), next.Err())

	m.Fields().Title = "Reusable"
	next, cmd = m.Update(ctrlT)
	require.NotNil(t, cmd)
	assert.Empty(t, next.Err())
	saved, ok := cmd().(SaveTemplateMsg)
	require.True(t, ok)
	assert.Equal(t, "Reusable", saved.Data.Title)
	assert.Equal(t, model.PriorityMedium, saved.Data.Priority)
}
