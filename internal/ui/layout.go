package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Layout holds the terminal size and the fixed chrome around the content.
type Layout struct {
	Width  int
	Height int

	// Chrome is the number of rows taken by the header and status bar.
	Chrome int
}

// NewLayout creates a Layout for a terminal of the given size with a
// one-row header and a one-row status bar.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height, Chrome: 2}
}

// ContentWidth returns the width available to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for views once the chrome is drawn.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.Chrome, 0)
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.row(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the key hints across the bottom row.
func (l Layout) RenderStatusBar(hints string) string {
	return l.row(theme.StatusBarStyle, hints, "")
}

// RenderErrorBanner renders a full-width error line, or "" for no error.
func (l Layout) RenderErrorBanner(msg string) string {
	if msg == "" {
		return ""
	}
	return theme.ErrorStyle.Width(l.Width).Render(msg + "  (esc to dismiss)")
}

// RenderWithFrame stacks header, banner, content and status bar. An empty
// banner takes no row.
func (l Layout) RenderWithFrame(header, banner, content, statusBar string) string {
	parts := make([]string, 0, 4)
	parts = append(parts, header)
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, content, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// row draws left and right in style, filling the gap with the style's
// background so the bar spans the full width.
func (l Layout) row(style lipgloss.Style, left, right string) string {
	l1 := style.Render(left)
	r := ""
	if right != "" {
		r = style.Align(lipgloss.Right).Render(right)
	}
	gap := max(l.Width-lipgloss.Width(l1)-lipgloss.Width(r), 0)
	filler := lipgloss.NewStyle().Width(gap).Background(style.GetBackground()).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, l1, filler, r)
}
