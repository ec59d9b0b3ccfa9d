// Package queuelist renders the queue pane. Selection lives in the
// synchronizer; this package only draws it.
package queuelist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/theme"
)

// Render draws the queue names with the selected one highlighted. The
// visible window scrolls so the selection is always on screen.
func Render(queues []model.Queue, selected, width, height int) string {
	title := theme.PanelTitleStyle.Render(fmt.Sprintf("Queues (%d)", len(queues)))
	if len(queues) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, theme.HelpStyle.Render("none"))
	}

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	start, end := window(len(queues), selected, rows)

	lines := make([]string, 0, end-start+1)
	lines = append(lines, title)
	for i := start; i < end; i++ {
		lines = append(lines, renderItem(queues[i], i == selected, width))
	}
	return strings.Join(lines, "\n")
}

func renderItem(q model.Queue, selected bool, width int) string {
	name := q.QueueName
	if q.IsFifo() {
		name = strings.TrimSuffix(name, model.FifoSuffix) + " " + theme.FifoBadgeStyle.Render("fifo")
	}
	if q.QueueAttributes != nil && q.QueueAttributes.ApproximateNumberOfMessages > 0 {
		name += theme.HelpStyle.Render(fmt.Sprintf(" ~%d", q.QueueAttributes.ApproximateNumberOfMessages))
	}

	style := theme.ListItemStyle
	if selected {
		style = theme.SelectedItemStyle
	}
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(name)
}

// window returns the [start, end) range of rows to draw.
func window(n, selected, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	start := 0
	if selected >= rows {
		start = selected - rows + 1
	}
	return start, start + rows
}
