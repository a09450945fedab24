package database

import (
	"context"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
	"github.com/google/uuid"
)

// CreateNotification stores n, assigning its ID and CreatedAt when unset.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return insertNotification(ctx, s.db, n, s.clock.Now())
}

func insertNotification(ctx context.Context, q querier, n *models.Notification, now time.Time) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now.UTC()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, event_id, type, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.EventID, string(n.Type), n.Message, n.Read, n.CreatedAt.UTC())
	return translate(err)
}

// ListNotifications retrieves userID's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, event_id, type, message, read, created_at
		FROM notifications
		WHERE user_id = ?`
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &typ, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags one of userID's notifications as read.
// Notifications of other users are reported as not found.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
