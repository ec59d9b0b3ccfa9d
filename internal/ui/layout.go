package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/theme"
)

// Layout splits the terminal into header, content, banner stack and
// status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left between the header and the status
// bar. Callers subtract the banner stack themselves.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the title on the left and status on the right of
// a full-width bar.
func (l Layout) RenderHeader(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(status)
	return l.bar(theme.HeaderStyle, left, right)
}

// RenderStatusBar renders the bottom bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// bar pads between left and right so the bar spans the full width.
func (l Layout) bar(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks header, content, banners and status bar. The
// content is padded so the banners and status bar stay at the bottom.
func (l Layout) RenderWithFrame(header, content, banners, statusBar string) string {
	rows := l.ContentHeight()
	if banners != "" {
		rows -= lipgloss.Height(banners)
	}
	if rows > 0 {
		content = lipgloss.PlaceVertical(rows, lipgloss.Top, content)
	}

	parts := []string{header, content}
	if banners != "" {
		parts = append(parts, banners)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
