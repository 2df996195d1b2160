package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorAccent = lipgloss.AdaptiveColor{Dark: "#7C6CF0", Light: "#5B47E0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorAccent).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlay panels such as stats and templates.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SelectedItemStyle highlights the focused row in the category and template
// lists.
var SelectedItemStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorAccent)

// HelpStyle is used for keyboard hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders the dismissible error banner.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// TitleStyle is used for panel headings.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// StatusStyle returns a style for the task status marker.
func StatusStyle(s model.Status) lipgloss.Style {
	if s == model.StatusCompleted {
		return lipgloss.NewStyle().Foreground(ColorGreen)
	}
	return lipgloss.NewStyle().Foreground(ColorGray)
}

// OverdueStyle marks due dates that have passed.
var OverdueStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

// CategoryStyle renders a category label in its own color, falling back to
// the accent color when none is set.
func CategoryStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle().Foreground(ColorAccent)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
