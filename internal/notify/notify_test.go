package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLifetime = 10 * time.Millisecond

// recordingHistory captures history callbacks.
type recordingHistory struct {
	recorded []Notification
	removed  map[ID]RemovalReason
	err      error
}

func newRecordingHistory() *recordingHistory {
	return &recordingHistory{removed: make(map[ID]RemovalReason)}
}

func (h *recordingHistory) RecordNotification(_ context.Context, n Notification) error {
	h.recorded = append(h.recorded, n)
	return h.err
}

func (h *recordingHistory) MarkNotificationRemoved(_ context.Context, id ID, reason RemovalReason, _ time.Time) error {
	h.removed[id] = reason
	return h.err
}

func TestManager_NotifyAddsNotification(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))

	cmd := m.Notify("queue missing", SeverityError)
	require.NotNil(t, cmd)

	active := m.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "queue missing", active[0].Message)
	assert.Equal(t, SeverityError, active[0].Severity)
	assert.NotZero(t, active[0].ID)
}

func TestManager_NotificationExpiresAfterLifetime(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))

	start := time.Now()
	cmd := m.Notify("boom", SeverityError)
	msg := cmd()
	assert.GreaterOrEqual(t, time.Since(start), testLifetime)

	exp, ok := msg.(ExpiredMsg)
	require.True(t, ok, "expected ExpiredMsg, got %T", msg)

	m.Update(exp)
	assert.Empty(t, m.Active())
}

func TestManager_DismissUnknownIDIsNoop(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))
	m.Notify("keep me", SeverityInfo)

	assert.NotPanics(t, func() { m.Dismiss(ID(999)) })
	assert.Equal(t, 1, m.Len())
}

func TestManager_DismissAfterExpiryIsNoop(t *testing.T) {
	h := newRecordingHistory()
	m := NewManager(WithLifetime(testLifetime), WithHistory(h))

	cmd := m.Notify("gone", SeverityWarning)
	id := m.Active()[0].ID
	m.Update(cmd())

	assert.NotPanics(t, func() { m.Dismiss(id) })
	assert.Empty(t, m.Active())
	assert.Equal(t, RemovedExpired, h.removed[id])
}

func TestManager_ExpiryAfterDismissIsNoop(t *testing.T) {
	h := newRecordingHistory()
	m := NewManager(WithLifetime(testLifetime), WithHistory(h))

	cmd := m.Notify("dismiss me", SeverityInfo)
	id := m.Active()[0].ID
	m.Dismiss(id)
	m.Update(cmd())

	assert.Empty(t, m.Active())
	assert.Equal(t, RemovedDismissed, h.removed[id])
}

func TestManager_BurstExpiresIndependently(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))

	first := m.Notify("first", SeverityError)
	second := m.Notify("second", SeveritySuccess)

	active := m.Active()
	require.Len(t, active, 2)
	assert.NotEqual(t, active[0].ID, active[1].ID)

	// Expire the second one first; the first must stay visible.
	m.Update(second())
	remaining := m.Active()
	require.Len(t, remaining, 1)
	assert.Equal(t, "first", remaining[0].Message)

	m.Update(first())
	assert.Empty(t, m.Active())
}

func TestManager_ActiveIsOldestFirst(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))
	for _, text := range []string{"a", "b", "c", "d"} {
		m.Notify(text, SeverityInfo)
	}
	m.Dismiss(m.Active()[1].ID)

	var got []string
	for _, n := range m.Active() {
		got = append(got, n.Message)
	}
	assert.Equal(t, []string{"a", "c", "d"}, got)
}

func TestManager_IDsAreNeverReused(t *testing.T) {
	m := NewManager(WithLifetime(testLifetime))
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		m.Notify("n", SeverityInfo)
		id := m.Active()[m.Len()-1].ID
		require.False(t, seen[id], "id %d reused", id)
		seen[id] = true
		m.DismissOldest()
	}
}

func TestManager_UnknownSeverityFallsBackToInfo(t *testing.T) {
	m := NewManager()
	m.Notify("odd", Severity("fatal"))
	assert.Equal(t, SeverityInfo, m.Active()[0].Severity)
}

func TestManager_DismissOldestAndAll(t *testing.T) {
	m := NewManager()
	m.Notify("one", SeverityInfo)
	m.Notify("two", SeverityInfo)
	m.Notify("three", SeverityInfo)

	m.DismissOldest()
	require.Equal(t, 2, m.Len())
	assert.Equal(t, "two", m.Active()[0].Message)

	m.DismissAll()
	assert.Zero(t, m.Len())

	assert.NotPanics(t, m.DismissOldest)
}

func TestManager_HistoryFailureDoesNotBreakNotify(t *testing.T) {
	h := newRecordingHistory()
	h.err = errors.New("disk full")
	m := NewManager(WithHistory(h))

	m.Notify("still shown", SeverityError)
	assert.Equal(t, 1, m.Len())
	assert.Len(t, h.recorded, 1)
}

func TestManager_IgnoresUnrelatedMessages(t *testing.T) {
	m := NewManager()
	m.Notify("x", SeverityInfo)
	m.Update("not an expiry")
	assert.Equal(t, 1, m.Len())
}

func TestManager_CreatedAtUsesClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(WithClock(func() time.Time { return fixed }))
	m.Notify("x", SeverityInfo)
	assert.Equal(t, fixed, m.Active()[0].CreatedAt)
}
