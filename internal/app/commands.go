package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sqs-console/internal/ui/command"
)

// executeCommand handles a command string from the command palette.
// Palette commands mirror the main view keys.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.Refresh, "reload", "r":
		return m.syncer.RefreshQueues()
	case command.NewQueue, "create":
		return m.openQueueForm()
	case command.Send:
		return m.openSendForm()
	case command.Delete:
		return m.syncer.DeleteSelectedQueue()
	case command.Purge:
		return m.syncer.PurgeSelectedQueue()
	case command.Dismiss:
		m.notices.DismissOldest()
		return nil
	case command.DismissAll, "clear":
		m.notices.DismissAll()
		return nil
	case command.History:
		return m.openHistory()
	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.Quit, "q":
		return m.quit()
	default:
		return nil
	}
}
