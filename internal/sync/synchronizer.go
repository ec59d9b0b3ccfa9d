// Package sync keeps the console's local view of queues and messages in
// step with the backend.
//
// The Synchronizer owns all view state and is only touched from the
// Bubble Tea update loop. Backend calls run inside tea.Cmd closures that
// capture plain values; their results come back as messages handled by
// Update. Timers (poll tick, settle delay) are tea.Tick commands.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sqs-console/internal/backend"
	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
)

// NoSelection is the selected index when the queue list is empty.
const NoSelection = -1

const (
	DefaultPollInterval   = 3 * time.Second
	DefaultSettleDelay    = time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Notification texts for sends rejected before any backend call.
const (
	MsgNoQueueSelected = "Could not send message to non-existent queue"
	MsgFifoNeedsGroup  = "You need to set a MessageGroupID when sending Messages to a FIFO queue"
)

var (
	ErrNilCaller   = errors.New("sync: backend caller is required")
	ErrNilNotifier = errors.New("sync: notifier is required")
)

// State represents the progress of one kind of refresh.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "syncing"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status holds the refresh state of the queue list or the message list.
type Status struct {
	State    State
	LastSync time.Time
	Err      error
}

// Operation names a user-triggered mutation.
type Operation string

const (
	OpCreateQueue Operation = "create queue"
	OpDeleteQueue Operation = "delete queue"
	OpPurgeQueue  Operation = "purge queue"
	OpSendMessage Operation = "send message"
)

// QueuesLoadedMsg carries the result of a queue list refresh.
type QueuesLoadedMsg struct {
	Seq    uint64
	Queues []model.Queue
	Err    error
}

// MessagesLoadedMsg carries the result of a message refresh for QueueURL.
type MessagesLoadedMsg struct {
	Seq      uint64
	QueueURL string
	Messages []model.Message
	Err      error
}

// RegionLoadedMsg carries the result of the region lookup.
type RegionLoadedMsg struct {
	Region model.Region
	Err    error
}

// MutationResultMsg carries the outcome of a create, delete, purge or send.
type MutationResultMsg struct {
	Op    Operation
	Queue model.Queue
	Err   error
}

// PollTickMsg triggers the recurring message refresh.
type PollTickMsg struct{}

// ReloadMsg triggers a queue list reload once a mutation has settled.
type ReloadMsg struct{}

// Snapshot is a read-only copy of the synchronizer state for rendering.
type Snapshot struct {
	Queues         []model.Queue
	Selected       int
	Messages       []model.Message
	Region         string
	ActionsEnabled bool
	Reloads        int
	QueuesStatus   Status
	MessagesStatus Status
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithPollInterval sets the period of the recurring message refresh.
func WithPollInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithSettleDelay sets the wait between a successful create or delete
// and the queue list reload.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d >= 0 {
			s.settleDelay = d
		}
	}
}

// WithRequestTimeout bounds each backend call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithFencing enables dropping of refresh responses that are older than
// the most recently issued refresh of the same kind. Without it the last
// response to arrive wins.
func WithFencing(enabled bool) Option {
	return func(s *Synchronizer) {
		s.fence = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// Synchronizer owns the queue list, the selection, the messages of the
// selected queue and the region label.
type Synchronizer struct {
	client   backend.Caller
	notifier notify.Notifier
	logger   *slog.Logger

	pollInterval   time.Duration
	settleDelay    time.Duration
	requestTimeout time.Duration
	fence          bool

	queues         []model.Queue
	selected       int
	messages       []model.Message
	region         string
	actionsEnabled bool
	reloads        int

	queuesSeq      uint64
	messagesSeq    uint64
	queuesStatus   Status
	messagesStatus Status

	started bool
	stopped bool
}

// New creates a Synchronizer. Both the backend caller and the notifier
// are required.
func New(client backend.Caller, notifier notify.Notifier, opts ...Option) (*Synchronizer, error) {
	if client == nil {
		return nil, ErrNilCaller
	}
	if notifier == nil {
		return nil, ErrNilNotifier
	}

	s := &Synchronizer{
		client:         client,
		notifier:       notifier,
		logger:         slog.Default(),
		pollInterval:   DefaultPollInterval,
		settleDelay:    DefaultSettleDelay,
		requestTimeout: DefaultRequestTimeout,
		selected:       NoSelection,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init loads the queue list, the messages and the region, and starts the
// poll timer. Calling it again is a no-op.
func (s *Synchronizer) Init() tea.Cmd {
	if s.started || s.stopped {
		return nil
	}
	s.started = true

	return tea.Batch(
		s.RefreshQueues(),
		s.RefreshMessages(),
		s.RefreshRegion(),
		s.schedulePoll(),
	)
}

// Stop ends the poll loop. Later ticks, reloads and results are ignored.
func (s *Synchronizer) Stop() {
	s.stopped = true
}

// RefreshQueues fetches the full queue list.
func (s *Synchronizer) RefreshQueues() tea.Cmd {
	if s.stopped {
		return nil
	}
	s.queuesSeq++
	s.queuesStatus.State = StateRunning

	seq := s.queuesSeq
	client, timeout := s.client, s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var queues []model.Queue
		err := client.Call(ctx, backend.ListQueues(), &queues)
		return QueuesLoadedMsg{Seq: seq, Queues: queues, Err: err}
	}
}

// RefreshMessages fetches the messages of the selected queue. It does
// nothing when no queue is selected.
func (s *Synchronizer) RefreshMessages() tea.Cmd {
	if s.stopped {
		return nil
	}
	q, ok := s.SelectedQueue()
	if !ok {
		return nil
	}
	s.messagesSeq++
	s.messagesStatus.State = StateRunning

	seq := s.messagesSeq
	client, timeout := s.client, s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var msgs []model.Message
		err := client.Call(ctx, backend.Post(backend.ActionGetMessages, &q, nil), &msgs)
		return MessagesLoadedMsg{Seq: seq, QueueURL: q.QueueURL, Messages: msgs, Err: err}
	}
}

// RefreshRegion fetches the region label.
func (s *Synchronizer) RefreshRegion() tea.Cmd {
	if s.stopped {
		return nil
	}
	client, timeout := s.client, s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var region model.Region
		err := client.Call(ctx, backend.Post(backend.ActionGetRegion, nil, nil), &region)
		return RegionLoadedMsg{Region: region, Err: err}
	}
}

// CreateQueue validates q and creates it. A successful create reloads the
// queue list after the settle delay.
func (s *Synchronizer) CreateQueue(q model.Queue) tea.Cmd {
	if err := model.ValidateQueue(q); err != nil {
		return s.notifier.Notify(err.Error(), notify.SeverityError)
	}
	return s.mutate(OpCreateQueue, q, backend.Post(backend.ActionCreateQueue, &q, nil))
}

// DeleteSelectedQueue deletes the selected queue. It does nothing while
// destructive actions are disabled.
func (s *Synchronizer) DeleteSelectedQueue() tea.Cmd {
	q, ok := s.destructiveTarget()
	if !ok {
		return nil
	}
	return s.mutate(OpDeleteQueue, q, backend.Post(backend.ActionDeleteQueue, &q, nil))
}

// PurgeSelectedQueue removes all messages from the selected queue. It does
// nothing while destructive actions are disabled.
func (s *Synchronizer) PurgeSelectedQueue() tea.Cmd {
	q, ok := s.destructiveTarget()
	if !ok {
		return nil
	}
	return s.mutate(OpPurgeQueue, q, backend.Post(backend.ActionPurgeQueue, &q, nil))
}

// SendMessage sends msg to the selected queue. Messages for FIFO queues
// must carry a group ID.
func (s *Synchronizer) SendMessage(msg model.Message) tea.Cmd {
	q, ok := s.SelectedQueue()
	if !ok {
		return s.notifier.Notify(MsgNoQueueSelected, notify.SeverityError)
	}
	if q.IsFifo() && msg.GroupID() == "" {
		return s.notifier.Notify(MsgFifoNeedsGroup, notify.SeverityError)
	}
	return s.mutate(OpSendMessage, q, backend.Post(backend.ActionSendMessage, &q, &msg))
}

// SelectQueue changes the selection and refreshes messages. Out-of-range
// indexes are ignored.
func (s *Synchronizer) SelectQueue(i int) tea.Cmd {
	if i < 0 || i >= len(s.queues) || i == s.selected {
		return nil
	}
	s.selected = i
	return s.RefreshMessages()
}

// SelectNext moves the selection down by one.
func (s *Synchronizer) SelectNext() tea.Cmd {
	return s.SelectQueue(s.selected + 1)
}

// SelectPrev moves the selection up by one.
func (s *Synchronizer) SelectPrev() tea.Cmd {
	return s.SelectQueue(s.selected - 1)
}

// Update applies backend results and timer messages. It returns follow-up
// commands; unrelated messages are ignored.
func (s *Synchronizer) Update(msg tea.Msg) tea.Cmd {
	if s.stopped {
		return nil
	}

	switch msg := msg.(type) {
	case QueuesLoadedMsg:
		return s.handleQueues(msg)
	case MessagesLoadedMsg:
		return s.handleMessages(msg)
	case RegionLoadedMsg:
		if msg.Err != nil {
			return s.fail("region", msg.Err)
		}
		s.region = msg.Region.Region
		return nil
	case MutationResultMsg:
		return s.handleMutation(msg)
	case PollTickMsg:
		return tea.Batch(s.RefreshMessages(), s.schedulePoll())
	case ReloadMsg:
		s.reloads++
		return s.RefreshQueues()
	}
	return nil
}

// SelectedQueue returns the selected queue, if any.
func (s *Synchronizer) SelectedQueue() (model.Queue, bool) {
	if s.selected < 0 || s.selected >= len(s.queues) {
		return model.Queue{}, false
	}
	return s.queues[s.selected], true
}

// Region returns the region label, empty until loaded.
func (s *Synchronizer) Region() string {
	return s.region
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	snap := Snapshot{
		Selected:       s.selected,
		Region:         s.region,
		ActionsEnabled: s.actionsEnabled,
		Reloads:        s.reloads,
		QueuesStatus:   s.queuesStatus,
		MessagesStatus: s.messagesStatus,
	}
	if s.queues != nil {
		snap.Queues = append([]model.Queue(nil), s.queues...)
	}
	if s.messages != nil {
		snap.Messages = append([]model.Message(nil), s.messages...)
	}
	return snap
}

func (s *Synchronizer) handleQueues(msg QueuesLoadedMsg) tea.Cmd {
	if s.fence && msg.Seq < s.queuesSeq {
		s.logger.Debug("dropping stale queue list", "seq", msg.Seq, "latest", s.queuesSeq)
		return nil
	}
	if msg.Err != nil {
		s.queuesStatus.State = StateError
		s.queuesStatus.Err = msg.Err
		return s.fail("list queues", msg.Err)
	}

	s.queuesStatus = Status{State: StateIdle, LastSync: time.Now()}
	s.queues = msg.Queues

	if len(s.queues) == 0 {
		s.selected = NoSelection
		s.actionsEnabled = false
		s.messages = nil
		return nil
	}

	s.selected = len(s.queues) - 1
	s.actionsEnabled = true
	return s.RefreshMessages()
}

func (s *Synchronizer) handleMessages(msg MessagesLoadedMsg) tea.Cmd {
	q, ok := s.SelectedQueue()
	if !ok {
		// The list emptied while the request was in flight.
		return nil
	}
	if s.fence && (msg.Seq < s.messagesSeq || msg.QueueURL != q.QueueURL) {
		s.logger.Debug("dropping stale messages", "seq", msg.Seq, "latest", s.messagesSeq, "queue_url", msg.QueueURL)
		return nil
	}
	if msg.Err != nil {
		s.messagesStatus.State = StateError
		s.messagesStatus.Err = msg.Err
		return s.fail("get messages", msg.Err)
	}

	s.messagesStatus = Status{State: StateIdle, LastSync: time.Now()}
	s.messages = msg.Messages
	return nil
}

func (s *Synchronizer) handleMutation(msg MutationResultMsg) tea.Cmd {
	if msg.Err != nil {
		return s.fail(string(msg.Op), msg.Err)
	}

	name := msg.Queue.QueueName
	s.logger.Info("mutation succeeded", "op", string(msg.Op), "queue", name)

	switch msg.Op {
	case OpCreateQueue:
		return tea.Batch(
			s.notifier.Notify(fmt.Sprintf("Queue %s created", name), notify.SeveritySuccess),
			s.scheduleReload(),
		)
	case OpDeleteQueue:
		s.messages = nil
		return tea.Batch(
			s.notifier.Notify(fmt.Sprintf("Queue %s deleted", name), notify.SeveritySuccess),
			s.scheduleReload(),
		)
	case OpPurgeQueue:
		s.messages = nil
		return s.notifier.Notify(fmt.Sprintf("Queue %s purged", name), notify.SeveritySuccess)
	case OpSendMessage:
		return s.notifier.Notify(fmt.Sprintf("Message sent to %s", name), notify.SeveritySuccess)
	}
	return nil
}

func (s *Synchronizer) mutate(op Operation, q model.Queue, req backend.Request) tea.Cmd {
	client, timeout := s.client, s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := client.Call(ctx, req, nil)
		return MutationResultMsg{Op: op, Queue: q, Err: err}
	}
}

func (s *Synchronizer) destructiveTarget() (model.Queue, bool) {
	if !s.actionsEnabled {
		return model.Queue{}, false
	}
	return s.SelectedQueue()
}

// fail reports err to the operator. The last known state is kept.
func (s *Synchronizer) fail(what string, err error) tea.Cmd {
	s.logger.Warn("backend call failed", "op", what, "error", err)
	return s.notifier.Notify(err.Error(), notify.SeverityError)
}

func (s *Synchronizer) schedulePoll() tea.Cmd {
	return tea.Tick(s.pollInterval, func(time.Time) tea.Msg {
		return PollTickMsg{}
	})
}

func (s *Synchronizer) scheduleReload() tea.Cmd {
	return tea.Tick(s.settleDelay, func(time.Time) tea.Msg {
		return ReloadMsg{}
	})
}
