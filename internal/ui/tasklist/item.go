package tasklist

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task     model.Task
	Category *model.Category
}

// FilterValue returns the string used for list filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{string(i.Task.Priority), string(i.Task.Status)}
	if i.Category != nil {
		parts = append(parts, i.Category.Name)
	}
	return strings.Join(parts, " | ")
}

// TaskDelegate renders one task per line.
type TaskDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}
	fmt.Fprint(w, renderLine(ti, index == m.Index(), now))
}

func renderLine(ti TaskItem, selected bool, now time.Time) string {
	task := ti.Task

	check := "[ ]"
	if task.IsCompleted() {
		check = "[x]"
	}
	check = theme.StatusStyle(task.Status).Render(check)

	pri := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))

	title := task.Title
	if task.IsCompleted() {
		title = lipgloss.NewStyle().Strikethrough(true).Foreground(theme.ColorGray).Render(title)
	}

	cat := ""
	if ti.Category != nil {
		cat = " " + theme.CategoryStyle(ti.Category.Color).Render("#"+ti.Category.Name)
	}

	due := ""
	if !task.DueDate.IsZero() {
		label := dueLabel(task.DueDate, now)
		if task.IsOverdue(now) {
			due = " " + theme.OverdueStyle.Render(label)
		} else {
			due = " " + lipgloss.NewStyle().Foreground(theme.ColorGray).Render(label)
		}
	}

	line := fmt.Sprintf("%s %s %s%s%s", check, pri, title, cat, due)
	if selected {
		return theme.SelectedItemStyle.Render("> " + line)
	}
	return "  " + line
}

// dueLabel describes a due date relative to today.
func dueLabel(due, now time.Time) string {
	days := int(math.Round(model.StartOfDay(due).Sub(model.StartOfDay(now)).Hours() / 24))
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days == -1:
		return "overdue by 1 day"
	case days < 0:
		return fmt.Sprintf("overdue by %d days", -days)
	case days < 7:
		return fmt.Sprintf("due in %d days", days)
	default:
		return "due " + due.Format("Jan 02")
	}
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!! "
	case model.PriorityLow:
		return "!  "
	default:
		return "?  "
	}
}
