// Package banner renders the active notifications above the status bar.
package banner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/notify"
	"github.com/nhle/sqs-console/internal/theme"
)

// MaxVisible caps how many banners are drawn; older ones are summarized.
const MaxVisible = 4

// Render draws one line per notification, oldest first. It returns ""
// when there is nothing to show.
func Render(active []notify.Notification, width int) string {
	if len(active) == 0 {
		return ""
	}

	hidden := 0
	if len(active) > MaxVisible {
		hidden = len(active) - MaxVisible
		active = active[hidden:]
	}

	lines := make([]string, 0, len(active)+1)
	if hidden > 0 {
		lines = append(lines, theme.HelpStyle.Render(plural(hidden)+" older, press x to dismiss"))
	}
	for _, n := range active {
		label := theme.SeverityLabelStyle(string(n.Severity)).Render(strings.ToUpper(string(n.Severity)))
		text := truncate(n.Message, width-lipgloss.Width(label)-4)
		lines = append(lines, theme.BannerStyle(string(n.Severity)).Render(label+" "+text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Height returns the number of lines Render will produce.
func Height(active []notify.Notification) int {
	switch {
	case len(active) == 0:
		return 0
	case len(active) > MaxVisible:
		return MaxVisible + 1
	default:
		return len(active)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 notification"
	}
	return fmt.Sprintf("%d notifications", n)
}

// truncate shortens s to at most limit cells, ending with an ellipsis.
// Newlines are flattened so each banner stays on one line.
func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 1 || lipgloss.Width(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) > limit-1 {
		r = r[:limit-1]
	}
	return string(r) + "…"
}
