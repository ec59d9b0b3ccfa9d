package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sqs-console/internal/keys"
	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
	appsync "github.com/nhle/sqs-console/internal/sync"
	"github.com/nhle/sqs-console/internal/ui"
	"github.com/nhle/sqs-console/internal/ui/banner"
	"github.com/nhle/sqs-console/internal/ui/command"
	helpview "github.com/nhle/sqs-console/internal/ui/help"
	"github.com/nhle/sqs-console/internal/ui/history"
	"github.com/nhle/sqs-console/internal/ui/messages"
	"github.com/nhle/sqs-console/internal/ui/queueform"
	"github.com/nhle/sqs-console/internal/ui/sendform"
)

// MsgSelectionChanged is shown when the queue a send form was opened for
// is no longer selected at submit time.
const MsgSelectionChanged = "Selection changed, message to %s not sent"

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewQueueForm
	ViewSendForm
	ViewHelp
	ViewCommand
	ViewHistory
)

// Model is the root Bubble Tea model. It routes messages between the
// synchronizer, the notification manager and the views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	version      string

	syncer  *appsync.Synchronizer
	notices *notify.Manager
	history history.Source

	messagePane messages.Model
	queueForm   queueform.Model
	sendForm    sendform.Model
	helpView    helpview.Model
	commandView command.Model
	historyView history.Model

	ready bool
}

// New creates the root model. hist may be nil, in which case the history
// view is unavailable.
func New(syncer *appsync.Synchronizer, notices *notify.Manager, hist history.Source, version string) Model {
	km := keys.DefaultKeyMap()
	km.SetActionsEnabled(false)
	km.History.SetEnabled(hist != nil)

	m := Model{
		currentView: ViewMain,
		keys:        km,
		version:     version,
		syncer:      syncer,
		notices:     notices,
		history:     hist,
		messagePane: messages.New(80, 24),
		queueForm:   queueform.New(80, 24),
		sendForm:    sendform.New(80, 24),
		helpView:    helpview.New(km, 80, 24),
		commandView: command.New(80, 24),
		historyView: history.New(80, 24),
	}
	m.refresh()
	return m
}

// Init starts the synchronizer.
func (m Model) Init() tea.Cmd {
	return m.syncer.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// huh forms need the size to lay themselves out.
		return m.updateActiveView(msg)

	case appsync.QueuesLoadedMsg, appsync.MessagesLoadedMsg, appsync.RegionLoadedMsg,
		appsync.MutationResultMsg, appsync.PollTickMsg, appsync.ReloadMsg:
		return m, m.syncer.Update(msg)

	case notify.ExpiredMsg:
		m.notices.Update(msg)
		return m, nil

	case queueform.SubmitMsg:
		m.currentView = ViewMain
		return m, m.syncer.CreateQueue(msg.Queue)

	case queueform.CancelMsg:
		m.currentView = ViewMain
		return m, nil

	case sendform.SubmitMsg:
		m.currentView = ViewMain
		// A reload while the form was open can move the selection.
		if q, ok := m.syncer.SelectedQueue(); !ok || !sameQueue(q, msg.Queue) {
			return m, m.notices.Notify(
				fmt.Sprintf(MsgSelectionChanged, msg.Queue.QueueName),
				notify.SeverityWarning,
			)
		}
		return m, m.syncer.SendMessage(msg.Message)

	case sendform.CancelMsg:
		m.currentView = ViewMain
		return m, nil

	case history.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case history.CloseMsg:
		m.currentView = ViewMain
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMain:
		m.messagePane, cmd = m.messagePane.Update(msg)
	case ViewQueueForm:
		m.queueForm, cmd = m.queueForm.Update(msg)
	case ViewSendForm:
		m.sendForm, cmd = m.sendForm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	}

	return m, cmd
}

// refresh copies synchronizer state into the key map and message pane.
func (m *Model) refresh() {
	snap := m.syncer.Snapshot()
	m.keys.SetActionsEnabled(snap.ActionsEnabled)
	if m.ready {
		// The banner stack grows and shrinks with the notifications.
		_, msgWidth := paneWidths(m.layout.ContentWidth())
		m.messagePane.SetSize(msgWidth-4, m.contentHeight()-2)
	}

	var selected *model.Queue
	if q, ok := m.syncer.SelectedQueue(); ok {
		selected = &q
	}
	m.messagePane.SetContent(selected, snap.Messages, snap.Region)
}

func (m *Model) resize() {
	width := m.layout.ContentWidth()
	height := m.contentHeight()

	m.queueForm.SetSize(width, height)
	m.sendForm.SetSize(width, height)
	m.helpView.SetSize(width, height)
	m.commandView.SetSize(width, height)
	m.historyView.SetSize(width, height)
}

// contentHeight is the layout's content area minus the banner stack.
func (m Model) contentHeight() int {
	return m.layout.ContentHeight() - banner.Height(m.notices.Active())
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.title(), m.syncStatus())
	content := m.renderContent()
	banners := banner.Render(m.notices.Active(), m.layout.Width)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, banners, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewMain:
		return m.renderMain()
	case ViewQueueForm:
		return m.queueForm.View()
	case ViewSendForm:
		return m.sendForm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewHistory:
		return m.historyView.View()
	default:
		return ""
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}
