package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Service is the subset of service.TemplateService the picker uses.
type Service interface {
	Search(ctx context.Context, query string) []model.Template
	Delete(ctx context.Context, id model.ID) bool
}

// UseMsg asks the parent to open a task form pre-filled from Template.
type UseMsg struct {
	Template model.Template
}

// CloseMsg signals the parent to close the picker.
type CloseMsg struct{}

// LoadedMsg carries the templates matching Query.
type LoadedMsg struct {
	Query     string
	Templates []model.Template
}

type deletedMsg struct{ ok bool }

// Model lists saved templates and lets the user pick or delete one.
type Model struct {
	svc         Service
	keys        *keys.KeyMap
	templates   []model.Template
	selectedIdx int
	query       string
	searchMode  bool
	searchInput textinput.Model
	statusMsg   string
	width       int
	height      int
}

// New creates a template picker.
func New(svc Service, k *keys.KeyMap, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "search templates..."
	si.Prompt = "/ "
	return Model{svc: svc, keys: k, searchInput: si, width: width, height: height}
}

// Load returns a command that fetches templates for the current query.
func (m Model) Load() tea.Cmd {
	svc := m.svc
	query := m.query
	return func() tea.Msg {
		return LoadedMsg{Query: query, Templates: svc.Search(context.Background(), query)}
	}
}

// Templates returns the listed templates.
func (m Model) Templates() []model.Template { return m.templates }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Query != m.query {
			return m, nil
		}
		m.templates = msg.Templates
		if m.selectedIdx >= len(m.templates) {
			m.selectedIdx = max(len(m.templates)-1, 0)
		}
		return m, nil

	case deletedMsg:
		m.statusMsg = "Template deleted"
		if !msg.ok {
			m.statusMsg = "Failed to delete template."
		}
		return m, m.Load()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.query = ""
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query = m.searchInput.Value()
	return m, tea.Batch(cmd, m.Load())
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Templates):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.templates) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.templates)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.templates) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.templates) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.query)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		if len(m.templates) == 0 {
			return m, nil
		}
		t := m.templates[m.selectedIdx]
		return m, func() tea.Msg { return UseMsg{Template: t} }

	case key.Matches(msg, m.keys.Delete):
		if len(m.templates) == 0 {
			return m, nil
		}
		svc := m.svc
		id := m.templates[m.selectedIdx].ID
		return m, func() tea.Msg {
			return deletedMsg{ok: svc.Delete(context.Background(), id)}
		}
	}
	return m, nil
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Templates"))
	b.WriteString("\n\n")

	if m.searchMode || m.query != "" {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}

	if len(m.templates) == 0 {
		empty := "No templates yet. Press ctrl+t in the task form to save one."
		if m.query != "" {
			empty = "No templates match your search."
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render(empty))
	}
	for i, t := range m.templates {
		label := fmt.Sprintf("%s  %s", t.Name, theme.PriorityStyle(t.TaskData.Priority).Render(string(t.TaskData.Priority)))
		if t.Description != "" {
			label += lipgloss.NewStyle().Foreground(theme.ColorGray).Render("  " + t.Description)
		}
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
	b.WriteString(theme.HelpStyle.Render("enter use | / search | d delete | esc back"))

	return theme.PanelStyle.Width(m.width - 4).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = width - 10
}
