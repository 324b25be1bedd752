// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"hydration_notification_bot/internal/domain/notification"

	"github.com/google/uuid"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// Append inserts n. A missing ID is generated.
func (r *PostgresNotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	query := `INSERT INTO notifications (id, user_id, notification_type, message, sent_at, read)
               VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, string(n.Kind), n.Body, n.SentAt, n.Read)
	if err != nil {
		return fmt.Errorf("error appending notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	query := `SELECT id, user_id, notification_type, message, sent_at, read
               FROM notifications
               WHERE user_id = $1
               ORDER BY sent_at DESC
               LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications by user: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}

// Helper to scan multiple rows
func scanNotifications(rows *sql.Rows) ([]*notification.Notification, error) {
	list := make([]*notification.Notification, 0)
	for rows.Next() {
		n := notification.Notification{}
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Body, &n.SentAt, &n.Read); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		n.Kind = notification.Kind(kind)
		list = append(list, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return list, nil
}
