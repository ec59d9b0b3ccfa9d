package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/sqs-console/internal/backend"
	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
	"github.com/nhle/sqs-console/internal/store"
	appsync "github.com/nhle/sqs-console/internal/sync"
	"github.com/nhle/sqs-console/internal/ui/command"
	"github.com/nhle/sqs-console/internal/ui/history"
	"github.com/nhle/sqs-console/internal/ui/queueform"
	"github.com/nhle/sqs-console/internal/ui/sendform"
)

type recordingCaller struct {
	mu    sync.Mutex
	calls []backend.Request
}

func (c *recordingCaller) Call(_ context.Context, req backend.Request, _ any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)
	return nil
}

func (c *recordingCaller) actions() []backend.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]backend.Action, 0, len(c.calls))
	for _, r := range c.calls {
		out = append(out, r.Action)
	}
	return out
}

type staticHistory struct{}

func (staticHistory) GetNotificationHistory(context.Context, store.HistoryFilter) ([]model.NotificationRecord, error) {
	return []model.NotificationRecord{{ID: 1, Message: "Queue a created", Severity: "success"}}, nil
}

func (staticHistory) CountNotifications(context.Context, store.HistoryFilter) (int, error) {
	return 1, nil
}

type fixture struct {
	model   Model
	caller  *recordingCaller
	syncer  *appsync.Synchronizer
	notices *notify.Manager
}

func newFixture(t *testing.T, hist history.Source) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	caller := &recordingCaller{}
	notices := notify.NewManager(notify.WithLogger(logger))
	syncer, err := appsync.New(caller, notices, appsync.WithLogger(logger))
	require.NoError(t, err)

	f := &fixture{
		model:   New(syncer, notices, hist, "v1.2.3"),
		caller:  caller,
		syncer:  syncer,
		notices: notices,
	}
	f.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(s string) tea.Cmd {
	return f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func queues(names ...string) []model.Queue {
	out := make([]model.Queue, 0, len(names))
	for _, n := range names {
		out = append(out, model.Queue{QueueName: n, QueueURL: "http://sqs/000/" + n})
	}
	return out
}

func TestView_EmptyRegion(t *testing.T) {
	f := newFixture(t, nil)

	view := f.model.View()

	assert.Contains(t, view, "SQS Console v1.2.3")
	assert.Contains(t, view, "No queues exist in region: eu-central-1")
	assert.Contains(t, view, "Queues (0)")
}

func TestView_LoadingBeforeWindowSize(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notices := notify.NewManager()
	syncer, err := appsync.New(&recordingCaller{}, notices, appsync.WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, "Loading...", New(syncer, notices, nil, "").View())
}

func TestQueuesLoaded_SelectsLastAndEnablesActions(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.model.keys.Delete.Enabled())

	f.send(appsync.QueuesLoadedMsg{Queues: queues("alpha", "beta.fifo")})

	snap := f.syncer.Snapshot()
	assert.Equal(t, 1, snap.Selected)
	assert.True(t, f.model.keys.Delete.Enabled())
	assert.True(t, f.model.keys.Purge.Enabled())

	view := f.model.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "No messages in beta.fifo")
}

func TestQueuesEmptied_DisablesActions(t *testing.T) {
	f := newFixture(t, nil)
	f.send(appsync.QueuesLoadedMsg{Queues: queues("alpha")})

	f.send(appsync.QueuesLoadedMsg{Queues: []model.Queue{}})

	assert.False(t, f.model.keys.Delete.Enabled())
	assert.Equal(t, appsync.NoSelection, f.syncer.Snapshot().Selected)
	assert.Nil(t, f.press("d"))
}

func TestSelectionKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.send(appsync.QueuesLoadedMsg{Queues: queues("a", "b", "c")})

	f.press("k")
	assert.Equal(t, 1, f.syncer.Snapshot().Selected)

	f.press("j")
	assert.Equal(t, 2, f.syncer.Snapshot().Selected)
}

func TestSendWithoutSelection_Notifies(t *testing.T) {
	f := newFixture(t, nil)

	f.press("s")

	assert.Equal(t, ViewMain, f.model.CurrentView())
	active := f.notices.Active()
	require.Len(t, active, 1)
	assert.Contains(t, active[0].Message, "non-existent queue")
	assert.Empty(t, f.caller.actions())
	assert.Contains(t, f.model.View(), "non-existent queue")
}

func TestSendOpensFormForSelectedQueue(t *testing.T) {
	f := newFixture(t, nil)
	f.send(appsync.QueuesLoadedMsg{Queues: queues("orders")})

	f.press("s")

	assert.Equal(t, ViewSendForm, f.model.CurrentView())
}

func TestSendForm_SubmitSendsToSelectedQueue(t *testing.T) {
	f := newFixture(t, nil)
	qs := queues("orders")
	f.send(appsync.QueuesLoadedMsg{Queues: qs})
	f.press("s")

	cmd := f.send(sendform.SubmitMsg{Queue: qs[0], Message: model.Message{Body: "hi"}})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewMain, f.model.CurrentView())

	mutation, ok := cmd().(appsync.MutationResultMsg)
	require.True(t, ok)
	assert.Equal(t, appsync.OpSendMessage, mutation.Op)
	assert.Equal(t, []backend.Action{backend.ActionSendMessage}, f.caller.actions())
}

func TestSendForm_SubmitAfterSelectionMovedIsDropped(t *testing.T) {
	f := newFixture(t, nil)
	f.send(appsync.QueuesLoadedMsg{Queues: queues("orders")})
	f.press("s")
	opened, ok := f.syncer.SelectedQueue()
	require.True(t, ok)

	// A reload lands while the form is open and selects the new last queue.
	f.send(appsync.QueuesLoadedMsg{Queues: queues("orders", "refunds")})
	f.send(sendform.SubmitMsg{Queue: opened, Message: model.Message{Body: "hi"}})

	assert.Equal(t, ViewMain, f.model.CurrentView())
	assert.Empty(t, f.caller.actions())
	active := f.notices.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.SeverityWarning, active[0].Severity)
	assert.Contains(t, active[0].Message, "message to orders not sent")
}

func TestSameQueue(t *testing.T) {
	a := model.Queue{QueueName: "a", QueueURL: "http://sqs/000/a"}
	assert.True(t, sameQueue(a, a))
	assert.False(t, sameQueue(a, model.Queue{QueueName: "a", QueueURL: "http://sqs/111/a"}))
	assert.True(t, sameQueue(model.Queue{QueueName: "a"}, model.Queue{QueueName: "a"}))
	assert.False(t, sameQueue(model.Queue{QueueName: "a"}, model.Queue{QueueName: "b"}))
}

func TestQueueForm_SubmitCreatesQueue(t *testing.T) {
	f := newFixture(t, nil)

	f.press("n")
	require.Equal(t, ViewQueueForm, f.model.CurrentView())

	cmd := f.send(queueform.SubmitMsg{Queue: model.Queue{QueueName: "jobs"}})
	require.NotNil(t, cmd)
	assert.Equal(t, ViewMain, f.model.CurrentView())

	result := cmd()
	mutation, ok := result.(appsync.MutationResultMsg)
	require.True(t, ok)
	assert.Equal(t, appsync.OpCreateQueue, mutation.Op)
	assert.Equal(t, []backend.Action{backend.ActionCreateQueue}, f.caller.actions())
}

func TestQueueForm_Cancel(t *testing.T) {
	f := newFixture(t, nil)
	f.press("n")

	f.send(queueform.CancelMsg{})

	assert.Equal(t, ViewMain, f.model.CurrentView())
}

func TestQuit_StopsSynchronizer(t *testing.T) {
	f := newFixture(t, nil)

	cmd := f.press("q")

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, f.syncer.Update(appsync.PollTickMsg{}))
	assert.Nil(t, f.syncer.RefreshQueues())
}

func TestCtrlC_QuitsFromForm(t *testing.T) {
	f := newFixture(t, nil)
	f.press("n")

	cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, nil)

	f.press("?")
	assert.Equal(t, ViewHelp, f.model.CurrentView())

	f.press("?")
	assert.Equal(t, ViewMain, f.model.CurrentView())
}

func TestDismissKeyAndExpiry(t *testing.T) {
	f := newFixture(t, nil)
	f.notices.Notify("first", notify.SeverityInfo)
	f.notices.Notify("second", notify.SeverityError)

	f.press("x")
	active := f.notices.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)

	f.send(notify.ExpiredMsg{ID: active[0].ID})
	assert.Zero(t, f.notices.Len())
}

func TestPalette_DismissAll(t *testing.T) {
	f := newFixture(t, nil)
	f.notices.Notify("one", notify.SeverityInfo)
	f.notices.Notify("two", notify.SeverityInfo)

	f.press(":")
	require.Equal(t, ViewCommand, f.model.CurrentView())

	f.send(command.CommandMsg(command.DismissAll))

	assert.Equal(t, ViewMain, f.model.CurrentView())
	assert.Zero(t, f.notices.Len())
}

func TestPalette_Refresh(t *testing.T) {
	f := newFixture(t, nil)

	cmd := f.send(command.CommandMsg(command.Refresh))
	require.NotNil(t, cmd)
	_, ok := cmd().(appsync.QueuesLoadedMsg)

	assert.True(t, ok)
	assert.Equal(t, []backend.Action{backend.ActionListQueues}, f.caller.actions())
}

func TestHistory(t *testing.T) {
	f := newFixture(t, staticHistory{})

	cmd := f.press("h")
	require.Equal(t, ViewHistory, f.model.CurrentView())
	require.NotNil(t, cmd)

	f.send(cmd())
	assert.Contains(t, f.model.View(), "Queue a created")

	f.send(history.CloseMsg{})
	assert.Equal(t, ViewMain, f.model.CurrentView())
}

func TestHistory_UnavailableWithoutSource(t *testing.T) {
	f := newFixture(t, nil)

	assert.Nil(t, f.press("h"))
	assert.Equal(t, ViewMain, f.model.CurrentView())
}

func TestSyncStatusShowsRegion(t *testing.T) {
	f := newFixture(t, nil)

	f.send(appsync.RegionLoadedMsg{Region: model.Region{Region: "us-west-2"}})

	assert.True(t, strings.Contains(f.model.syncStatus(), "region us-west-2"))
}

func TestCombinedState(t *testing.T) {
	assert.Equal(t, appsync.StateIdle, combinedState(appsync.StateIdle, appsync.StateIdle))
	assert.Equal(t, appsync.StateRunning, combinedState(appsync.StateIdle, appsync.StateRunning))
	assert.Equal(t, appsync.StateError, combinedState(appsync.StateRunning, appsync.StateError))
}

func TestPaneWidths(t *testing.T) {
	left, right := paneWidths(120)
	assert.Equal(t, 40, left)
	assert.Equal(t, 80, right)

	left, right = paneWidths(60)
	assert.Equal(t, minQueuePaneWidth, left)
	assert.Equal(t, 60-minQueuePaneWidth, right)
}
