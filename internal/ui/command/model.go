package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/theme"
)

// CommandMsg carries an accepted command line, e.g. "sort priority".
type CommandMsg string

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Verbs are the first words the palette accepts.
var Verbs = []string{"new", "reload", "stats", "templates", "categories", "clear", "sort", "help", "quit"}

// suggestions expands "sort" into one entry per sort key.
func suggestions() []string {
	out := make([]string, 0, len(Verbs)+len(filter.SortKeys))
	for _, v := range Verbs {
		if v != "sort" {
			out = append(out, v)
			continue
		}
		for _, k := range filter.SortKeys {
			out = append(out, "sort "+string(k))
		}
	}
	return out
}

// Model is the ":" command palette.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions())

	m := Model{input: ti}
	m.SetSize(width, height)
	return m
}

// check rejects lines whose first word is not a known verb. Arguments are
// left to the caller.
func check(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if !slices.Contains(Verbs, fields[0]) {
		return fmt.Errorf("unknown command %q", fields[0])
	}
	if fields[0] == "sort" && len(fields) < 2 {
		return fmt.Errorf("sort needs a key")
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.reset()
			return m, func() tea.Msg { return CancelMsg{} }

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			if err := check(line); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.reset()
			return m, func() tea.Msg { return CommandMsg(line) }
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) reset() {
	m.input.Reset()
	m.input.Blur()
	m.err = ""
}

// Err returns the message for the last rejected line.
func (m Model) Err() string { return m.err }

func (m Model) View() string {
	parts := []string{
		theme.TitleStyle.MarginBottom(1).Render("Command Palette"),
		m.input.View(),
	}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}
	parts = append(parts, "", theme.HelpStyle.Render("tab completes · "+strings.Join(Verbs, ", ")))
	return theme.PanelStyle.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
