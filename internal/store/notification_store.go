package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/sqs-console/internal/model"
	"github.com/nhle/sqs-console/internal/notify"
)

// RecordNotification inserts a newly raised notification.
func (s *SQLiteStore) RecordNotification(ctx context.Context, n notify.Notification) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (session_id, id, message, severity, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.sessionID, uint64(n.ID), n.Message, string(n.Severity), createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording notification %d: %w", n.ID, err)
	}
	return nil
}

// MarkNotificationRemoved stores when and why a notification left the
// active set. Only the first removal is kept.
func (s *SQLiteStore) MarkNotificationRemoved(
	ctx context.Context,
	id notify.ID,
	reason notify.RemovalReason,
	at time.Time,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET removed_at = ?, removal_reason = ?
		WHERE session_id = ? AND id = ? AND removed_at IS NULL`,
		at.UTC(), string(reason), s.sessionID, uint64(id),
	)
	if err != nil {
		return fmt.Errorf("marking notification %d removed: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d not found or already removed", id)
	}
	return nil
}

// GetNotificationHistory returns notifications of the current session,
// newest first.
func (s *SQLiteStore) GetNotificationHistory(
	ctx context.Context,
	filter HistoryFilter,
) ([]model.NotificationRecord, error) {
	where, args := s.historyConditions(filter)

	query := `
		SELECT session_id, id, message, severity, created_at, removed_at, removal_reason
		FROM notifications` + where + `
		ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var records []model.NotificationRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("querying notification history: %w", err)
	}
	return records, nil
}

// CountNotifications returns how many notifications match filter.
func (s *SQLiteStore) CountNotifications(ctx context.Context, filter HistoryFilter) (int, error) {
	where, args := s.historyConditions(filter)

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notifications"+where, args...); err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) historyConditions(filter HistoryFilter) (string, []any) {
	conditions := []string{"session_id = ?"}
	args := []any{s.sessionID}

	if filter.Severity != nil {
		conditions = append(conditions, "severity = ?")
		args = append(args, *filter.Severity)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "removed_at IS NULL")
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}
