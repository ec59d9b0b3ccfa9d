package store

import (
	"context"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
)

// HistoryFilter controls filtering and pagination for history queries.
type HistoryFilter struct {
	Severity   *string // "error", "warning", "info", "success", or nil (all)
	ActiveOnly bool    // only notifications that have not been removed
	Limit      int
	Offset     int
}

// Store defines the session notification history. It records every
// notification raised during one console run and how it left the
// active set.
type Store interface {
	notify.History

	GetNotificationHistory(ctx context.Context, filter HistoryFilter) ([]model.NotificationRecord, error)
	CountNotifications(ctx context.Context, filter HistoryFilter) (int, error)
	SessionID() string
	Close() error
}
