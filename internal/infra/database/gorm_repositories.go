package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hydration_notification_bot/internal/domain/intake"
	"hydration_notification_bot/internal/domain/notification"
	"hydration_notification_bot/internal/domain/profile"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormProfileRepository struct {
	database *gorm.DB
}

func NewGormProfileRepository(database *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{database: database}
}

func toProfileRow(p *profile.Profile) profileRow {
	return profileRow{
		UserID:           p.UserID,
		DisplayName:      p.DisplayName,
		RemindersEnabled: p.RemindersEnabled,
		ReminderMethod:   string(p.PreferredMethod),
		PhoneNumber:      p.PhoneNumber,
		Email:            p.Email,
		WaterGoal:        p.DailyGoalMl,
	}
}

func fromProfileRow(row profileRow) *profile.Profile {
	return profile.Normalize(&profile.Profile{
		UserID:           row.UserID,
		DisplayName:      row.DisplayName,
		RemindersEnabled: row.RemindersEnabled,
		PreferredMethod:  profile.Method(row.ReminderMethod),
		PhoneNumber:      row.PhoneNumber,
		Email:            row.Email,
		DailyGoalMl:      row.WaterGoal,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	})
}

func (repo *GormProfileRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	var row profileRow
	if err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile by user ID: %w", err)
	}
	return fromProfileRow(row), nil
}

func (repo *GormProfileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	profile.Normalize(p)
	row := toProfileRow(p)
	err := repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "reminders_enabled", "reminder_method", "phone_number", "email", "water_goal", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("error upserting profile: %w", err)
	}

	stored, err := repo.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return nil
}

func (repo *GormProfileRepository) Ensure(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	profile.Normalize(p)
	row := toProfileRow(p)
	err := repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("error ensuring profile: %w", err)
	}
	return repo.Get(ctx, p.UserID)
}

func (repo *GormProfileRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := repo.database.WithContext(ctx).Model(&profileRow{}).Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("error listing profile user IDs: %w", err)
	}
	return ids, nil
}

type GormNotificationRepository struct {
	database *gorm.DB
}

func NewGormNotificationRepository(database *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{database: database}
}

func (repo *GormNotificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	row := notificationRow{
		ID:               n.ID,
		UserID:           n.UserID,
		NotificationType: string(n.Kind),
		Message:          n.Body,
		SentAt:           n.SentAt.UTC(),
		Read:             n.Read,
	}
	if err := repo.database.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error appending notification: %w", err)
	}
	return nil
}

func (repo *GormNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*notification.Notification, error) {
	rows := make([]notificationRow, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying notifications by user: %w", err)
	}

	list := make([]*notification.Notification, 0, len(rows))
	for _, row := range rows {
		list = append(list, &notification.Notification{
			ID:     row.ID,
			UserID: row.UserID,
			Kind:   notification.Kind(row.NotificationType),
			Body:   row.Message,
			SentAt: row.SentAt,
			Read:   row.Read,
		})
	}
	return list, nil
}

func (repo *GormNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := repo.database.WithContext(ctx).
		Model(&notificationRow{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type GormIntakeRepository struct {
	database *gorm.DB
}

func NewGormIntakeRepository(database *gorm.DB) *GormIntakeRepository {
	return &GormIntakeRepository{database: database}
}

// Times are stored in UTC so SQLite's text comparison orders them correctly.
func (repo *GormIntakeRepository) Add(ctx context.Context, e *intake.Entry) error {
	row := waterLogRow{UserID: e.UserID, AmountMl: e.AmountMl, LoggedAt: e.LoggedAt.UTC()}
	if err := repo.database.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("error adding water log: %w", err)
	}
	e.ID = row.ID
	return nil
}

func (repo *GormIntakeRepository) TotalBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var total int64
	if err := repo.database.WithContext(ctx).
		Model(&waterLogRow{}).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, from.UTC(), to.UTC()).
		Select("COALESCE(SUM(amount_ml), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("error summing water logs: %w", err)
	}
	return int(total), nil
}
