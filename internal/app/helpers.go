package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/theme"
	"github.com/nhle/sqs-console/internal/ui/queuelist"
)

// minQueuePaneWidth keeps typical queue names readable on narrow terminals.
const minQueuePaneWidth = 24

// paneWidths splits the content width between the queue pane and the
// message pane, roughly one third to two thirds.
func paneWidths(total int) (int, int) {
	left := total / 3
	if left < minQueuePaneWidth {
		left = minQueuePaneWidth
	}
	if left > total {
		left = total
	}
	return left, total - left
}

// renderMain draws the queue pane next to the message pane.
func (m Model) renderMain() string {
	snap := m.syncer.Snapshot()
	height := m.contentHeight()
	left, right := paneWidths(m.layout.ContentWidth())

	queues := theme.PanelStyle.
		Width(left - 2).
		Height(height - 2).
		Render(queuelist.Render(snap.Queues, snap.Selected, left-4, height-2))

	msgs := theme.PanelStyle.
		Width(right - 2).
		Height(height - 2).
		Render(m.messagePane.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, queues, msgs)
}

// sameQueue compares by URL, falling back to the name when the backend
// reports no URL.
func sameQueue(a, b model.Queue) bool {
	if a.QueueURL != "" || b.QueueURL != "" {
		return a.QueueURL == b.QueueURL
	}
	return a.QueueName == b.QueueName
}
