package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/theme"
)

// Model lists the key bindings along with the filter and sort values the
// list keys cycle through.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: k, help: h}
	m.SetSize(width, height)
	return m
}

// Update is a no-op; the parent closes the panel.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	sorts := make([]string, len(filter.SortKeys))
	for i, k := range filter.SortKeys {
		sorts[i] = k.Label()
	}

	legend := theme.HelpStyle.Render(strings.Join([]string{
		"1 status: all, pending, completed",
		"2 priority: all, high, medium, low",
		"3 category: all, then each category",
		"tab sort: " + strings.Join(sorts, " → "),
		": commands: new, reload, stats, templates, categories, clear, sort <key>, help, quit",
	}, "\n"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.MarginBottom(1).Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		legend,
	)
	return theme.PanelStyle.Width(m.width - 4).Height(max(m.height-4, 0)).Render(content)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
