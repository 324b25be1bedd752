package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hydration_notification_bot/internal/domain/intake"
)

type PostgresIntakeRepository struct {
	db *sql.DB
}

func NewPostgresIntakeRepository(db *sql.DB) *PostgresIntakeRepository {
	return &PostgresIntakeRepository{db: db}
}

func (r *PostgresIntakeRepository) Add(ctx context.Context, e *intake.Entry) error {
	query := `INSERT INTO water_logs (user_id, amount_ml, logged_at)
               VALUES ($1, $2, $3)
               RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, e.UserID, e.AmountMl, e.LoggedAt).Scan(&e.ID); err != nil {
		return fmt.Errorf("error adding water log: %w", err)
	}
	return nil
}

func (r *PostgresIntakeRepository) TotalBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	query := `SELECT COALESCE(SUM(amount_ml), 0)
               FROM water_logs
               WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3`
	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("error summing water logs: %w", err)
	}
	return int(total.Int64), nil
}
