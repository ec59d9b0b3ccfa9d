package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/ui/history"
)

// handleKey processes global and main-view keys. It reports false when
// the key should go to the active view instead.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, m.quit(), true
	}

	switch m.currentView {
	case ViewQueueForm, ViewSendForm:
		// Forms own every key, including esc which aborts them.
		return m, nil, false

	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewHistory:
		// The history view closes itself on esc and h.
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Down):
		return m, m.syncer.SelectNext(), true

	case key.Matches(msg, m.keys.Up):
		return m, m.syncer.SelectPrev(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.syncer.RefreshQueues(), true

	case key.Matches(msg, m.keys.NewQueue):
		cmd := m.openQueueForm()
		return m, cmd, true

	case key.Matches(msg, m.keys.Send):
		cmd := m.openSendForm()
		return m, cmd, true

	case key.Matches(msg, m.keys.Delete):
		return m, m.syncer.DeleteSelectedQueue(), true

	case key.Matches(msg, m.keys.Purge):
		return m, m.syncer.PurgeSelectedQueue(), true

	case key.Matches(msg, m.keys.Dismiss):
		m.notices.DismissOldest()
		return m, nil, true

	case key.Matches(msg, m.keys.History):
		cmd := m.openHistory()
		return m, cmd, true
	}

	return m, nil, false
}

func (m *Model) openQueueForm() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewQueueForm
	return m.queueForm.StartCreate()
}

// openSendForm opens the form for the selected queue. Without a
// selection the send is handed straight to the synchronizer, which
// rejects it with a notification.
func (m *Model) openSendForm() tea.Cmd {
	q, ok := m.syncer.SelectedQueue()
	if !ok {
		return m.syncer.SendMessage(model.Message{})
	}
	m.previousView = m.currentView
	m.currentView = ViewSendForm
	return m.sendForm.StartSend(q)
}

func (m *Model) openHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewHistory
	m.historyView.SetLoading()
	return history.Load(m.history)
}

func (m *Model) quit() tea.Cmd {
	m.syncer.Stop()
	return tea.Quit
}
