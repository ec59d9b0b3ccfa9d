// Package notify holds the set of transient operator notifications.
//
// Every notification gets its own expiry timer, delivered to the Bubble Tea
// runtime as an ExpiredMsg, so a burst of notifications appears and expires
// independently. Expiry and manual dismissal share one idempotent removal.
package notify

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLifetime is how long a notification stays active when no
// lifetime is configured.
const DefaultLifetime = 3 * time.Second

// Severity classifies a notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo, SeveritySuccess:
		return true
	}
	return false
}

// ID identifies a notification within one Manager. IDs are handed out
// from a counter and never reused.
type ID uint64

// Notification is a single transient message to the operator.
type Notification struct {
	ID        ID
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// RemovalReason records why a notification left the active set.
type RemovalReason string

const (
	RemovedExpired   RemovalReason = "expired"
	RemovedDismissed RemovalReason = "dismissed"
)

// ExpiredMsg is delivered when a notification's lifetime has elapsed.
type ExpiredMsg struct {
	ID ID
}

// Notifier is the handle components use to raise notifications. The
// returned command schedules the notification's expiry and must be
// handed back to the Bubble Tea runtime.
type Notifier interface {
	Notify(message string, severity Severity) tea.Cmd
}

// History receives notification lifecycle events. Implementations must
// not block for long since they are called from the update loop.
type History interface {
	RecordNotification(ctx context.Context, n Notification) error
	MarkNotificationRemoved(ctx context.Context, id ID, reason RemovalReason, at time.Time) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLifetime sets how long each notification stays active.
func WithLifetime(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

// WithHistory records every notification and its removal.
func WithHistory(h History) Option {
	return func(m *Manager) {
		m.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the clock used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager owns the active notification set. It is not safe for concurrent
// use; all calls are expected from the Bubble Tea update loop.
type Manager struct {
	lifetime time.Duration
	nextID   ID
	order    []ID
	active   map[ID]Notification
	history  History
	logger   *slog.Logger
	now      func() time.Time
}

var _ Notifier = (*Manager)(nil)

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		lifetime: DefaultLifetime,
		active:   make(map[ID]Notification),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lifetime returns the configured notification lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Notify adds a notification and returns the command that expires it.
// Unknown severities are shown as info.
func (m *Manager) Notify(message string, severity Severity) tea.Cmd {
	if !severity.Valid() {
		severity = SeverityInfo
	}

	m.nextID++
	n := Notification{
		ID:        m.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: m.now(),
	}
	m.order = append(m.order, n.ID)
	m.active[n.ID] = n

	m.logger.Debug("notification added",
		"id", uint64(n.ID),
		"severity", string(n.Severity),
		"message", n.Message,
	)
	if m.history != nil {
		if err := m.history.RecordNotification(context.Background(), n); err != nil {
			m.logger.Warn("recording notification", "id", uint64(n.ID), "error", err)
		}
	}

	id := n.ID
	return tea.Tick(m.lifetime, func(time.Time) tea.Msg {
		return ExpiredMsg{ID: id}
	})
}

// Dismiss removes the notification with the given id. Unknown or already
// removed ids are ignored.
func (m *Manager) Dismiss(id ID) {
	m.remove(id, RemovedDismissed)
}

// DismissOldest removes the oldest active notification, if any.
func (m *Manager) DismissOldest() {
	if len(m.order) == 0 {
		return
	}
	m.remove(m.order[0], RemovedDismissed)
}

// DismissAll removes every active notification.
func (m *Manager) DismissAll() {
	ids := make([]ID, len(m.order))
	copy(ids, m.order)
	for _, id := range ids {
		m.remove(id, RemovedDismissed)
	}
}

// Update handles expiry messages. Other messages are ignored.
func (m *Manager) Update(msg tea.Msg) {
	if exp, ok := msg.(ExpiredMsg); ok {
		m.remove(exp.ID, RemovedExpired)
	}
}

// Active returns the active notifications, oldest first.
func (m *Manager) Active() []Notification {
	out := make([]Notification, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.active[id])
	}
	return out
}

// Len returns the number of active notifications.
func (m *Manager) Len() int {
	return len(m.order)
}

// remove is the single removal path shared by expiry and dismissal.
func (m *Manager) remove(id ID, reason RemovalReason) {
	if _, ok := m.active[id]; !ok {
		return
	}
	delete(m.active, id)
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	m.logger.Debug("notification removed", "id", uint64(id), "reason", string(reason))
	if m.history != nil {
		if err := m.history.MarkNotificationRemoved(context.Background(), id, reason, m.now()); err != nil {
			m.logger.Warn("recording notification removal", "id", uint64(id), "error", err)
		}
	}
}
