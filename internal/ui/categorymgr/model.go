package categorymgr

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg signals the parent to close the category view.
type CloseMsg struct{}

// ChangedMsg signals that categories were created, updated or deleted.
type ChangedMsg struct{}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

type savedMsg struct{ err error }
type deletedMsg struct{ err error }

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Model is the Bubble Tea model for category management.
type Model struct {
	mode        mode
	categories  *session.Categories
	tasks       *session.Tasks
	keys        *keys.KeyMap
	rows        []model.Category
	selectedIdx int
	editingID   model.ID
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a category manager over the category and task sessions.
func New(categories *session.Categories, tasks *session.Tasks, k *keys.KeyMap, width, height int) Model {
	m := Model{
		mode:       modeList,
		categories: categories,
		tasks:      tasks,
		keys:       k,
		fb:         &formBindings{},
		width:      width,
		height:     height,
	}
	m.Refresh()
	return m
}

// Refresh re-reads the sessions, deriving task counts.
func (m *Model) Refresh() {
	m.rows = m.categories.WithTaskCounts(m.tasks.Tasks())
	if m.selectedIdx >= len(m.rows) {
		m.selectedIdx = max(len(m.rows)-1, 0)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.statusMsg = "Category saved"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		m.Refresh()
		return m, changed

	case deletedMsg:
		m.statusMsg = "Category deleted"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		m.Refresh()
		return m, changed

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func changed() tea.Msg { return ChangedMsg{} }

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Categories):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.rows)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.rows) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = model.NoID
		m.fb.name = ""
		m.fb.color = model.DefaultCategoryColor
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.rows) == 0 {
			return m, nil
		}
		c := m.rows[m.selectedIdx]
		m.editingID = c.ID
		m.fb.name = c.Name
		m.fb.color = c.Color
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.rows) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Category name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder(model.DefaultCategoryColor).
				Value(&m.fb.color).
				Validate(validateColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validateColor(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || hexColor.MatchString(s) {
		return nil
	}
	return fmt.Errorf("color must look like #RRGGBB")
}

func (m Model) buildConfirmForm() *huh.Form {
	c := m.rows[m.selectedIdx]
	desc := "No tasks use this category."
	if c.TaskCount > 0 {
		desc = fmt.Sprintf("%d task(s) will be left without a category.", c.TaskCount)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete category %q?", c.Name)).
				Description(desc).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.save()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if m.fb.confirm {
			return m, m.delete(m.rows[m.selectedIdx].ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the category manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Categories"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).
			Render("No categories yet. Press 'n' to create one."))
	}
	for i, c := range m.rows {
		swatch := theme.CategoryStyle(c.Color).Render("●")
		label := fmt.Sprintf("%s %s (%d)", swatch, c.Name, c.TaskCount)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n new | e edit | d delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) save() tea.Cmd {
	categories := m.categories
	fb := m.fb
	editID := m.editingID
	return func() tea.Msg {
		name := strings.TrimSpace(fb.name)
		color := strings.TrimSpace(fb.color)
		ctx := context.Background()
		if !editID.IsSet() {
			_, err := categories.Create(ctx, model.Category{Name: name, Color: color})
			return savedMsg{err: err}
		}
		patch := model.CategoryPatch{Name: &name}
		if color != "" {
			patch.Color = &color
		}
		_, err := categories.Update(ctx, editID, patch)
		return savedMsg{err: err}
	}
}

// delete removes the category and clears it from cached tasks. The backend
// detaches stored tasks itself.
func (m Model) delete(id model.ID) tea.Cmd {
	categories := m.categories
	tasks := m.tasks
	return func() tea.Msg {
		if err := categories.Delete(context.Background(), id); err != nil {
			return deletedMsg{err: err}
		}
		tasks.DetachCategory(id)
		return deletedMsg{}
	}
}
