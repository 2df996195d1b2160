package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/form"
	"github.com/nhle/taskboard/internal/model"
)

// loadedMsg is sent after both sessions finished loading.
type loadedMsg struct{ err error }

// mutationMsg is sent after a task or template write. notice is shown in the
// status bar on success; failures surface through the session error state.
type mutationMsg struct {
	err    error
	notice string
}

// load fetches tasks and categories into their sessions.
func (m Model) load() tea.Cmd {
	tasks := m.tasks
	categories := m.categories
	return func() tea.Msg {
		ctx := context.Background()
		if err := categories.Load(ctx); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: tasks.Load(ctx)}
	}
}

// submitTask is the task form's SubmitFunc. Edits send every field so the
// stored task matches the form exactly.
func (m Model) submitTask(ctx context.Context, mode form.Mode, id model.ID, data model.TaskData) error {
	if mode == form.ModeCreate {
		_, err := m.tasks.Create(ctx, data)
		return err
	}
	patch := model.TaskPatch{
		Title:       &data.Title,
		Description: &data.Description,
		Priority:    &data.Priority,
		CategoryID:  &data.CategoryID,
		DueDate:     data.DueDate,
	}
	_, err := m.tasks.Update(ctx, id, patch)
	return err
}

func (m Model) toggleTask(id model.ID) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		t, err := tasks.Toggle(context.Background(), id)
		if err != nil {
			return mutationMsg{err: err}
		}
		notice := "Task reopened"
		if t.IsCompleted() {
			notice = "Task completed"
		}
		return mutationMsg{notice: notice}
	}
}

func (m Model) deleteTask(id model.ID) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		if err := tasks.Delete(context.Background(), id); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{notice: "Task deleted"}
	}
}

func (m Model) saveTemplate(data model.TaskData) tea.Cmd {
	svc := m.taskService
	return func() tea.Msg {
		t := svc.SaveAsTemplate(context.Background(), data, "")
		if t == nil {
			return mutationMsg{err: errTemplateSave}
		}
		return mutationMsg{notice: "Saved template " + t.Name}
	}
}
