package scheduler

import (
	"context"
	"fmt"
	"time"

	"hydration_notification_bot/internal/app" // For NotificationService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const dailyTipTimeout = 5 * time.Minute

type NotificationScheduler struct {
	cronEngine       *cron.Cron
	notifService     app.NotificationService // Using the interface
	logger           logrus.FieldLogger
	cronSpecRollover string
	cronSpecDailyTip string // Empty disables the tip job
}

func NewNotificationScheduler(
	notifService app.NotificationService,
	logger logrus.FieldLogger,
	loc *time.Location,
	cronSpecRollover string, // e.g., "* * * * *" (every minute)
	cronSpecDailyTip string, // e.g., "0 9 * * *" (9 AM daily)
) *NotificationScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationScheduler{
		cronEngine:       cron.New(cron.WithLocation(loc)), // Milestone days follow the same zone
		notifService:     notifService,
		logger:           logger,
		cronSpecRollover: cronSpecRollover,
		cronSpecDailyTip: cronSpecDailyTip,
	}
}

func (s *NotificationScheduler) Start() error {
	s.logger.Info("Starting notification scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecRollover, s.runRollover); err != nil {
		return fmt.Errorf("could not add milestone rollover cron job: %w", err)
	}

	if s.cronSpecDailyTip != "" {
		if _, err := s.cronEngine.AddFunc(s.cronSpecDailyTip, s.runDailyTip); err != nil {
			return fmt.Errorf("could not add daily tip cron job: %w", err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Notification scheduler started with jobs.")
	return nil
}

func (s *NotificationScheduler) runRollover() {
	if reset := s.notifService.ResetStaleMilestones(); reset > 0 {
		s.logger.WithField("reset", reset).Info("Cron job reset milestone states for the new day.")
	}
}

func (s *NotificationScheduler) runDailyTip() {
	s.logger.Info("Cron job triggered for daily hydration tip.")
	ctx, cancel := context.WithTimeout(context.Background(), dailyTipTimeout)
	defer cancel()
	if err := s.notifService.PostDailyTip(ctx); err != nil {
		s.logger.WithError(err).Error("Error during daily tip processing")
	}
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Notification scheduler gracefully stopped.")
}
