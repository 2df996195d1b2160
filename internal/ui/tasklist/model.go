package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// NewTaskMsg asks the parent to open an empty task form.
type NewTaskMsg struct{}

// EditTaskMsg asks the parent to open the form for Task.
type EditTaskMsg struct {
	Task model.Task
}

// ToggleTaskMsg asks the parent to flip the completion state of a task.
type ToggleTaskMsg struct {
	ID model.ID
}

// DeleteTaskMsg asks the parent to delete a task.
type DeleteTaskMsg struct {
	ID model.ID
}

// Model is the main task list view. It holds no data of its own: the parent
// pushes tasks and categories in with SetData and the list derives the
// visible rows from the current search, filters and sort key.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	tasks       []model.Task
	categories  []model.Category
	filters     filter.Filters
	sortKey     filter.SortKey
	search      string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a task list sorted by sortKey.
func New(k *keys.KeyMap, sortKey filter.SortKey, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title or description..."
	si.Prompt = "/ "
	si.Width = width - 4

	if sortKey == "" {
		sortKey = filter.SortDueDate
	}

	return Model{
		list:        l,
		keys:        k,
		filters:     filter.DefaultFilters(),
		sortKey:     sortKey,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetData replaces the tasks and categories shown by the list.
func (m *Model) SetData(tasks []model.Task, categories []model.Category) tea.Cmd {
	m.tasks = tasks
	m.categories = categories
	if active(m.filters.Category) {
		if _, ok := m.category(m.filters.Category); !ok {
			m.filters.Category = filter.All
		}
	}
	return m.refresh()
}

// Visible returns the tasks currently shown, in display order.
func (m Model) Visible() []model.Task {
	return filter.FilterAndSort(m.tasks, m.search, m.filters, m.sortKey)
}

// Selected returns the highlighted task.
func (m Model) Selected() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Filters returns the active filters.
func (m Model) Filters() filter.Filters { return m.filters }

// SortKey returns the active sort key.
func (m Model) SortKey() filter.SortKey { return m.sortKey }

// Search returns the active search query.
func (m Model) Search() string { return m.search }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

func (m *Model) refresh() tea.Cmd {
	visible := m.Visible()
	items := make([]list.Item, len(visible))
	for i, task := range visible {
		item := TaskItem{Task: task}
		if c, ok := m.category(task.CategoryID.String()); ok {
			item.Category = &c
		}
		items[i] = item
	}
	m.list.Title = m.title(len(visible))
	return m.list.SetItems(items)
}

func (m Model) title(shown int) string {
	t := fmt.Sprintf("Tasks (%d/%d) · sort: %s", shown, len(m.tasks), m.sortKey.Label())
	if m.search != "" {
		t += fmt.Sprintf(" · search: %q", m.search)
	}
	if m.filters.IsActive() {
		t += " · " + m.filterSummary()
	}
	return t
}

func (m Model) filterSummary() string {
	var parts []string
	if active(m.filters.Status) {
		parts = append(parts, "status="+m.filters.Status)
	}
	if active(m.filters.Priority) {
		parts = append(parts, "priority="+m.filters.Priority)
	}
	if active(m.filters.Category) {
		name := m.filters.Category
		if c, ok := m.category(name); ok {
			name = c.Name
		}
		parts = append(parts, "category="+name)
	}
	return strings.Join(parts, " ")
}

func (m Model) category(id string) (model.Category, bool) {
	if id == "" {
		return model.Category{}, false
	}
	for _, c := range m.categories {
		if c.ID.String() == id {
			return c, true
		}
	}
	return model.Category{}, false
}

func active(v string) bool { return v != "" && v != filter.All }

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys filters live as the query is typed.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.search = ""
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.search = m.searchInput.Value()
	refresh := m.refresh()
	return m, tea.Batch(cmd, refresh)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.New):
		return m, emit(NewTaskMsg{})

	case key.Matches(msg, m.keys.Edit):
		if task, ok := m.Selected(); ok {
			return m, emit(EditTaskMsg{Task: task})
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if task, ok := m.Selected(); ok {
			return m, emit(ToggleTaskMsg{ID: task.ID})
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.Selected(); ok {
			return m, emit(DeleteTaskMsg{ID: task.ID})
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.search)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.FilterStatus):
		m.filters.Status = cycle(m.filters.Status, statusValues())
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.FilterPriority):
		m.filters.Priority = cycle(m.filters.Priority, priorityValues())
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.FilterCategory):
		m.filters.Category = cycle(m.filters.Category, m.categoryValues())
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilters):
		m.filters = filter.DefaultFilters()
		m.search = ""
		m.searchInput.Reset()
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		m.sortKey = m.sortKey.Next()
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func statusValues() []string {
	return []string{filter.All, string(model.StatusPending), string(model.StatusCompleted)}
}

func priorityValues() []string {
	values := []string{filter.All}
	for _, p := range model.Priorities {
		values = append(values, string(p))
	}
	return values
}

func (m Model) categoryValues() []string {
	values := []string{filter.All}
	for _, c := range m.categories {
		values = append(values, c.ID.String())
	}
	return values
}

// cycle returns the value after current in values, wrapping to the first.
func cycle(current string, values []string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// View renders the task list view.
func (m Model) View() string {
	var sections []string
	if m.searchMode {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	}

	if len(m.list.Items()) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.list.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if len(m.tasks) > 0 {
		return style.Render("No matching tasks.\nPress 0 to clear search and filters.")
	}
	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// SetClock overrides the clock used for due-date labels.
func (m *Model) SetClock(now func() time.Time) {
	m.list.SetDelegate(TaskDelegate{now: now})
}
