package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Model renders board statistics. It is a pure view over the data pushed
// in with SetData.
type Model struct {
	stats      filter.Stats
	categories []model.Category
	bar        progress.Model
	width      int
}

// New creates a stats panel.
func New(width int) Model {
	bar := progress.New(progress.WithSolidFill(string(theme.ColorGreen.Dark)), progress.WithoutPercentage())
	m := Model{bar: bar}
	m.SetWidth(width)
	return m
}

// SetData recomputes the statistics. categories should carry task counts.
func (m *Model) SetData(tasks []model.Task, categories []model.Category, now time.Time) {
	m.stats = filter.ComputeStats(tasks, now)
	m.categories = categories
}

// Stats returns the last computed statistics.
func (m Model) Stats() filter.Stats { return m.stats }

// SetWidth updates the panel width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.bar.Width = max(width-30, 10)
}

// View renders the panel.
func (m Model) View() string {
	s := m.stats
	label := lipgloss.NewStyle().Width(14).Foreground(theme.ColorGray)

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Statistics"))
	b.WriteString("\n\n")

	row := func(name string, value string) {
		b.WriteString(label.Render(name))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Total", fmt.Sprint(s.Total))
	row("Completed", fmt.Sprint(s.Completed))
	row("Pending", fmt.Sprint(s.Pending))
	overdue := fmt.Sprint(s.Overdue)
	if s.Overdue > 0 {
		overdue = theme.OverdueStyle.Render(overdue)
	}
	row("Overdue", overdue)
	row("Done", fmt.Sprintf("%s %d%%", m.bar.ViewAs(float64(s.CompletionRate)/100), s.CompletionRate))

	b.WriteString("\n")
	b.WriteString(theme.TitleStyle.Render("Pending by priority"))
	b.WriteString("\n")
	for _, p := range model.Priorities {
		row(theme.PriorityStyle(p).Render(string(p)), fmt.Sprint(s.PendingByPriority[p]))
	}

	if len(m.categories) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.TitleStyle.Render("By category"))
		b.WriteString("\n")
		for _, c := range m.categories {
			row(theme.CategoryStyle(c.Color).Render(c.Name), fmt.Sprint(c.TaskCount))
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("esc back"))
	return theme.PanelStyle.Width(m.width - 4).Render(b.String())
}
