package taskform

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/form"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// SubmitFunc persists the form data. id is model.NoID in create mode.
type SubmitFunc func(ctx context.Context, mode form.Mode, id model.ID, data model.TaskData) error

// SubmittedMsg reports the outcome of a submission.
type SubmittedMsg struct {
	Err error
}

// SavedMsg is dispatched once the task was stored and the form closed.
type SavedMsg struct {
	Mode form.Mode
}

// SaveTemplateMsg asks the parent to store the current fields as a template.
type SaveTemplateMsg struct {
	Data model.TaskData
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

var saveTemplateKey = key.NewBinding(
	key.WithKeys("ctrl+t"),
	key.WithHelp("ctrl+t", "save as template"),
)

// Model is the Bubble Tea model for the task create/edit form. Field values
// live in a heap-allocated form.Form so that huh's Value() pointers remain
// valid across Bubble Tea model copies.
type Model struct {
	form       *huh.Form
	fields     *form.Form
	submit     SubmitFunc
	categories []model.Category
	now        func() time.Time
	err        string
	notice     string
	width      int
	height     int
}

// New creates a task form model that stores tasks through submit.
func New(submit SubmitFunc, width, height int) Model {
	return Model{
		fields: form.NewCreate(),
		submit: submit,
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// SetCategories sets the options for the category selector.
func (m *Model) SetCategories(categories []model.Category) {
	m.categories = categories
}

// StartCreate opens an empty form.
func (m *Model) StartCreate() tea.Cmd {
	return m.start(form.NewCreate())
}

// StartFromTemplate opens a create form pre-filled from a template.
func (m *Model) StartFromTemplate(t model.Template) tea.Cmd {
	f := form.NewCreate()
	f.LoadTemplate(t.TaskData)
	cmd := m.start(f)
	m.notice = "Loaded template " + t.Name
	return cmd
}

// StartEdit opens the form for an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	return m.start(form.NewEdit(task))
}

func (m *Model) start(f *form.Form) tea.Cmd {
	m.fields = f
	m.err = ""
	m.notice = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Fields exposes the bound form state.
func (m Model) Fields() *form.Form { return m.fields }

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SubmittedMsg:
		return m.handleSubmitted(msg)

	case tea.KeyMsg:
		if key.Matches(msg, saveTemplateKey) {
			return m.saveTemplate()
		}
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submitCmd()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) saveTemplate() (Model, tea.Cmd) {
	data, err := m.fields.SaveAsTemplate()
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.notice = "Saved as template"
	return m, func() tea.Msg { return SaveTemplateMsg{Data: data} }
}

func (m Model) submitCmd() tea.Cmd {
	fields := m.fields
	submit := m.submit
	return func() tea.Msg {
		err := fields.Submit(context.Background(), func(ctx context.Context, data model.TaskData) error {
			return submit(ctx, fields.Mode(), fields.EditID(), data)
		})
		return SubmittedMsg{Err: err}
	}
}

func (m Model) handleSubmitted(msg SubmittedMsg) (Model, tea.Cmd) {
	if msg.Err == nil {
		mode := m.fields.Mode()
		m.form = nil
		return m, func() tea.Msg { return SavedMsg{Mode: mode} }
	}

	// Keep the entered values and let the user fix them.
	var errs form.Errors
	if errors.As(msg.Err, &errs) {
		m.err = errs.Error()
	} else {
		m.err = msg.Err.Error()
	}
	m.form = m.buildForm()
	return m, m.form.Init()
}

// Err returns the last submission or template error shown in the form.
func (m Model) Err() string { return m.err }

// Active reports whether a form is open.
func (m Model) Active() bool { return m.form != nil }

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.fields.Mode() == form.ModeEdit {
		titleText = "Edit Task"
	}

	parts := []string{theme.TitleStyle.MarginBottom(1).Render(titleText)}
	if m.notice != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.notice))
	}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}
	parts = append(parts, m.form.View(), theme.HelpStyle.Render("ctrl+t save as template · esc cancel"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[model.Priority], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorities = append(priorities, huh.NewOption(priorityLabel(p), p))
	}

	categories := []huh.Option[string]{huh.NewOption("Select a category", "")}
	for _, c := range m.categories {
		categories = append(categories, huh.NewOption(c.Name, c.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fields.Title).
				Validate(form.ValidateTitle),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fields.Description),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&m.fields.Priority),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&m.fields.CategoryID).
				Validate(form.ValidateCategory),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.DueDate).
				Validate(form.DueDateValidator(m.now())),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	}
	return string(p)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 8
	if h < 10 {
		h = 10
	}
	return h
}
