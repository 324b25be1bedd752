package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens (creating if needed) a single-node SQLite store and migrates its tables.
func OpenSQLite(dbPath string, log logrus.FieldLogger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			log,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite allows a single writer

	if err := database.AutoMigrate(&profileRow{}, &notificationRow{}, &waterLogRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return database, nil
}

type profileRow struct {
	ID               uint      `gorm:"primaryKey"`
	UserID           string    `gorm:"size:64;not null;uniqueIndex"`
	DisplayName      string    `gorm:"size:255"`
	RemindersEnabled bool      `gorm:"not null"`
	ReminderMethod   string    `gorm:"size:16;not null"`
	PhoneNumber      string    `gorm:"size:32"`
	Email            string    `gorm:"size:320"`
	WaterGoal        int       `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (profileRow) TableName() string { return "profiles" }

type notificationRow struct {
	ID               string    `gorm:"primaryKey;size:36"`
	UserID           string    `gorm:"size:64;not null;index:idx_notifications_user_sent"`
	NotificationType string    `gorm:"size:16;not null"`
	Message          string    `gorm:"not null"`
	SentAt           time.Time `gorm:"not null;index:idx_notifications_user_sent"`
	Read             bool      `gorm:"not null"`
}

func (notificationRow) TableName() string { return "notifications" }

type waterLogRow struct {
	ID       int64     `gorm:"primaryKey"`
	UserID   string    `gorm:"size:64;not null;index:idx_water_logs_user_logged"`
	AmountMl int       `gorm:"not null"`
	LoggedAt time.Time `gorm:"not null;index:idx_water_logs_user_logged"`
}

func (waterLogRow) TableName() string { return "water_logs" }
