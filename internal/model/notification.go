package model

import "time"

// NotificationRecord is one entry of the session notification history.
type NotificationRecord struct {
	// SessionID identifies the console run that raised the notification.
	SessionID string `json:"session_id" db:"session_id"`

	// ID is the notification's id within its session.
	ID uint64 `json:"id" db:"id"`

	Message  string `json:"message" db:"message"`
	Severity string `json:"severity" db:"severity"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// RemovedAt is nil while the notification is still active.
	RemovedAt *time.Time `json:"removed_at,omitempty" db:"removed_at"`

	// RemovalReason is "expired" or "dismissed", empty while active.
	RemovalReason string `json:"removal_reason,omitempty" db:"removal_reason"`
}

// Active reports whether the notification had not been removed when the
// record was read.
func (r NotificationRecord) Active() bool {
	return r.RemovedAt == nil
}
