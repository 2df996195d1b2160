package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the board.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Task actions
	New    key.Binding
	Edit   key.Binding
	Toggle key.Binding
	Delete key.Binding

	// Search, filters and sort
	Search         key.Binding
	FilterStatus   key.Binding
	FilterPriority key.Binding
	FilterCategory key.Binding
	ClearFilters   key.Binding
	CycleSort      key.Binding

	// Panels
	Stats      key.Binding
	Templates  key.Binding
	Categories key.Binding
	Help       key.Binding

	Refresh key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "cycle status"),
		),
		FilterPriority: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "cycle priority"),
		),
		FilterCategory: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "cycle category"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filters"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		Templates: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "templates"),
		),
		Categories: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "categories"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.New, k.Edit, k.Toggle, k.Delete,
		k.Search, k.CycleSort, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped for the expanded help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.New, k.Edit, k.Toggle, k.Delete},
		{k.Search, k.FilterStatus, k.FilterPriority, k.FilterCategory, k.ClearFilters, k.CycleSort},
		{k.Stats, k.Templates, k.Categories, k.Refresh, k.Help},
	}
}
