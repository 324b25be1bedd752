package database

import (
	"context"
	"database/sql"
	"fmt" // For error wrapping

	"hydration_notification_bot/internal/domain/profile"
)

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `user_id, display_name, reminders_enabled, reminder_method, phone_number, email, water_goal, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*profile.Profile, error) {
	var (
		p           profile.Profile
		displayName sql.NullString
		method      sql.NullString
		phone       sql.NullString
		email       sql.NullString
		goal        sql.NullInt64
	)
	if err := row.Scan(&p.UserID, &displayName, &p.RemindersEnabled, &method, &phone, &email, &goal, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.DisplayName = displayName.String
	p.PreferredMethod = profile.Method(method.String)
	p.PhoneNumber = phone.String
	p.Email = email.String
	p.DailyGoalMl = int(goal.Int64)
	return profile.Normalize(&p), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresProfileRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile by user ID: %w", err)
	}
	return p, nil
}

// Upsert writes p, replacing any existing row for the same user_id.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	profile.Normalize(p)
	query := `INSERT INTO profiles (user_id, display_name, reminders_enabled, reminder_method, phone_number, email, water_goal)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (user_id) DO UPDATE
               SET display_name = EXCLUDED.display_name,
                   reminders_enabled = EXCLUDED.reminders_enabled,
                   reminder_method = EXCLUDED.reminder_method,
                   phone_number = EXCLUDED.phone_number,
                   email = EXCLUDED.email,
                   water_goal = EXCLUDED.water_goal,
                   updated_at = NOW()
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, nullString(p.DisplayName), p.RemindersEnabled, string(p.PreferredMethod),
		nullString(p.PhoneNumber), nullString(p.Email), p.DailyGoalMl,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting profile: %w", err)
	}
	return nil
}

// Ensure inserts p if no profile exists for its user and returns whichever row is stored.
// The unique constraint on user_id makes concurrent calls converge on one row.
func (r *PostgresProfileRepository) Ensure(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	profile.Normalize(p)
	insert := `INSERT INTO profiles (user_id, display_name, reminders_enabled, reminder_method, phone_number, email, water_goal)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, insert,
		p.UserID, nullString(p.DisplayName), p.RemindersEnabled, string(p.PreferredMethod),
		nullString(p.PhoneNumber), nullString(p.Email), p.DailyGoalMl,
	)
	if err != nil {
		return nil, fmt.Errorf("error ensuring profile: %w", err)
	}
	return r.Get(ctx, p.UserID)
}

func (r *PostgresProfileRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing profile user IDs: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning profile user ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile user IDs: %w", err)
	}
	return ids, nil
}
