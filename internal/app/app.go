package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/taskboard/internal/filter"
	"github.com/nhle/taskboard/internal/form"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/categorymgr"
	"github.com/nhle/taskboard/internal/ui/command"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/stats"
	"github.com/nhle/taskboard/internal/ui/taskform"
	"github.com/nhle/taskboard/internal/ui/tasklist"
	"github.com/nhle/taskboard/internal/ui/templates"
)

var errTemplateSave = errors.New("saving template failed")

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewForm
	ViewTemplates
	ViewCategories
	ViewStats
	ViewHelp
	ViewCommand
)

// Deps are the collaborators the board needs.
type Deps struct {
	Tasks       *session.Tasks
	Categories  *session.Categories
	TaskService *service.TaskService
	Templates   *service.TemplateService
	Logger      *log.Logger

	// Backend is shown in the header, e.g. "sqlite".
	Backend     string
	DefaultSort filter.SortKey
}

// Model is the root Bubble Tea model that manages view routing, layout, and
// the task and category sessions.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap
	tasks       *session.Tasks
	categories  *session.Categories
	taskService *service.TaskService
	logger      *log.Logger
	backend     string
	now         func() time.Time

	taskList     tasklist.Model
	taskForm     taskform.Model
	templateView templates.Model
	categoryView categorymgr.Model
	statsView    stats.Model
	helpView     helpview.Model
	commandView  command.Model

	ready  bool
	errMsg string
	notice string
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := Model{
		currentView:  ViewList,
		keys:         k,
		tasks:        d.Tasks,
		categories:   d.Categories,
		taskService:  d.TaskService,
		logger:       logger,
		backend:      d.Backend,
		now:          time.Now,
		taskList:     tasklist.New(k, d.DefaultSort, 80, 24),
		templateView: templates.New(d.Templates, k, 80, 24),
		categoryView: categorymgr.New(d.Categories, d.Tasks, k, 80, 24),
		statsView:    stats.New(80),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
	}
	m.taskForm = taskform.New(m.submitTask, 80, 24)
	return m
}

// Init loads the sessions.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.templateView.SetSize(w, h)
		m.categoryView.SetSize(w, h)
		m.statsView.SetWidth(w)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case loadedMsg:
		if msg.err != nil {
			m.logger.Error("loading board", "err", msg.err)
		}
		cmd := m.refresh()
		return m, cmd

	case mutationMsg:
		if msg.err != nil {
			m.logger.Warn("mutation failed", "err", msg.err)
			if errors.Is(msg.err, errTemplateSave) {
				m.errMsg = "Failed to save template. Please try again."
			}
		} else {
			m.notice = msg.notice
		}
		cmd := m.refresh()
		return m, cmd

	case tasklist.NewTaskMsg:
		cmd := m.openForm(func() tea.Cmd { return m.taskForm.StartCreate() })
		return m, cmd

	case tasklist.EditTaskMsg:
		task := msg.Task
		cmd := m.openForm(func() tea.Cmd { return m.taskForm.StartEdit(task) })
		return m, cmd

	case tasklist.ToggleTaskMsg:
		return m, m.toggleTask(msg.ID)

	case tasklist.DeleteTaskMsg:
		return m, m.deleteTask(msg.ID)

	case taskform.SavedMsg:
		m.currentView = ViewList
		m.notice = "Task saved"
		if msg.Mode == form.ModeEdit {
			m.notice = "Task updated"
		}
		cmd := m.refresh()
		return m, cmd

	case taskform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case taskform.SaveTemplateMsg:
		return m, m.saveTemplate(msg.Data)

	case templates.UseMsg:
		t := msg.Template
		cmd := m.openForm(func() tea.Cmd { return m.taskForm.StartFromTemplate(t) })
		return m, cmd

	case templates.CloseMsg, categorymgr.CloseMsg, command.CancelMsg:
		m.currentView = ViewList
		cmd := m.refresh()
		return m, cmd

	case categorymgr.ChangedMsg:
		cmd := m.refresh()
		return m, cmd

	case command.CommandMsg:
		m.currentView = ViewList
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewList && !m.taskList.Searching() {
			if next, cmd, ok := m.handleListKey(msg); ok {
				return next, cmd
			}
		}
		if m.currentView == ViewStats || m.currentView == ViewHelp {
			if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.Stats, m.keys.Quit) {
				m.currentView = ViewList
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleListKey processes global keys on the list view. ok is false when
// the key belongs to the task list itself.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Back):
		if m.bannerText() == "" {
			return m, nil, false
		}
		m.tasks.ClearErr()
		m.categories.ClearErr()
		m.errMsg = ""
		return m, nil, true

	case key.Matches(msg, m.keys.Help):
		m.switchTo(ViewHelp)
		return m, nil, true

	case msg.String() == ":":
		m.switchTo(ViewCommand)
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Stats):
		m.showStats()
		return m, nil, true

	case key.Matches(msg, m.keys.Templates):
		m.switchTo(ViewTemplates)
		cmd := m.templateView.Load()
		return m, cmd, true

	case key.Matches(msg, m.keys.Categories):
		m.categoryView.Refresh()
		m.switchTo(ViewCategories)
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		m.notice = "Reloaded"
		cmd := m.load()
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) switchTo(v ViewState) {
	m.currentView = v
	m.notice = ""
}

func (m *Model) showStats() {
	tasks := m.tasks.Tasks()
	m.statsView.SetData(tasks, m.categories.WithTaskCounts(tasks), m.now())
	m.switchTo(ViewStats)
}

// openForm shows the task form with the latest categories. start runs after
// the categories are set so the selector is built with them.
func (m *Model) openForm(start func() tea.Cmd) tea.Cmd {
	m.taskForm.SetCategories(m.categories.Categories())
	m.switchTo(ViewForm)
	return start()
}

// refresh pushes the session caches into the list views.
func (m *Model) refresh() tea.Cmd {
	m.categoryView.Refresh()
	return m.taskList.SetData(m.tasks.Tasks(), m.categories.Categories())
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewTemplates:
		m.templateView, cmd = m.templateView.Update(msg)
	case ViewCategories:
		m.categoryView, cmd = m.categoryView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Taskboard", m.headerStatus())
	banner := m.layout.RenderErrorBanner(m.bannerText())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, banner, m.renderContent(), statusBar)
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.taskForm.View()
	case ViewTemplates:
		return m.templateView.View()
	case ViewCategories:
		return m.categoryView.View()
	case ViewStats:
		return m.statsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.taskList.View()
	}
}

// bannerText returns the first pending error message.
func (m Model) bannerText() string {
	for _, msg := range []string{m.tasks.Err(), m.categories.Err(), m.errMsg} {
		if msg != "" {
			return msg
		}
	}
	return ""
}

func (m Model) headerStatus() string {
	if m.tasks.Loading() || m.categories.Loading() {
		return "loading..."
	}
	s := filter.ComputeStats(m.tasks.Tasks(), m.now())
	status := fmt.Sprintf("%d/%d done", s.Completed, s.Total)
	if s.Overdue > 0 {
		status += fmt.Sprintf(" · %d overdue", s.Overdue)
	}
	if m.backend != "" {
		status += " · " + m.backend
	}
	return status
}

func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewStats:
		return "esc back"
	case ViewForm:
		return "enter next | ctrl+t save as template | esc cancel"
	case ViewTemplates:
		return "enter use | / search | d delete | esc back"
	case ViewCategories:
		return "n new | e edit | d delete | esc back"
	default:
		hints := "q quit | ? help | n new | / search | 1-3 filter | tab sort | s stats | t templates | c categories"
		if m.notice != "" {
			return m.notice + " | " + hints
		}
		return hints
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "new":
		return m.openForm(func() tea.Cmd { return m.taskForm.StartCreate() })
	case "reload", "refresh":
		return m.load()
	case "stats":
		m.showStats()
	case "templates":
		m.switchTo(ViewTemplates)
		return m.templateView.Load()
	case "categories":
		m.categoryView.Refresh()
		m.switchTo(ViewCategories)
	case "clear":
		return m.sendToList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	case "sort":
		if len(fields) < 2 {
			return nil
		}
		want := filter.SortKey(fields[1])
		for range filter.SortKeys {
			if m.taskList.SortKey() == want {
				break
			}
			m.sendToList(tea.KeyMsg{Type: tea.KeyTab})
		}
		if m.taskList.SortKey() != want {
			m.notice = "Unknown sort key " + fields[1]
		}
	case "help":
		m.switchTo(ViewHelp)
	case "quit", "q":
		return tea.Quit
	default:
		m.notice = "Unknown command " + fields[0]
	}
	return nil
}

func (m *Model) sendToList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return cmd
}
