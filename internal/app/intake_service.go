// internal/app/intake_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"hydration_notification_bot/internal/domain/intake"
	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/profile"

	"github.com/sirupsen/logrus"
)

var ErrInvalidAmount = fmt.Errorf("amount must be a positive number of millilitres")

const maxSingleIntakeMl = 5000

// Progress is a user's intake for the current local day.
type Progress struct {
	TotalMl    int
	GoalMl     int
	Percentage float64
	Reached    []milestone.Level // Levels newly crossed by the last intake
}

type IntakeService struct {
	intakeRepo    intake.Repository
	profileRepo   profile.Repository
	notifications NotificationService
	loc           *time.Location
	now           func() time.Time
	logger        logrus.FieldLogger
}

func NewIntakeService(
	ir intake.Repository,
	pr profile.Repository,
	ns NotificationService,
	loc *time.Location,
	logger logrus.FieldLogger,
) *IntakeService {
	if loc == nil {
		loc = time.Local
	}
	return &IntakeService{
		intakeRepo:    ir,
		profileRepo:   pr,
		notifications: ns,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

// LogIntake stores amountMl and hands the new percentage to the notification
// pipeline. Only storage failures of the intake itself are returned.
func (s *IntakeService) LogIntake(ctx context.Context, userID string, amountMl int) (*Progress, error) {
	if amountMl <= 0 || amountMl > maxSingleIntakeMl {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	entry := &intake.Entry{UserID: userID, AmountMl: amountMl, LoggedAt: now}
	if err := s.intakeRepo.Add(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log water intake: %w", err)
	}

	progress, err := s.progress(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	progress.Reached = s.notifications.ProcessIntake(ctx, userID, progress.Percentage)

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"amount_ml":  amountMl,
		"total_ml":   progress.TotalMl,
		"percentage": progress.Percentage,
	}).Info("Water intake logged")
	return progress, nil
}

func (s *IntakeService) Today(ctx context.Context, userID string) (*Progress, error) {
	return s.progress(ctx, userID, s.now())
}

func (s *IntakeService) progress(ctx context.Context, userID string, at time.Time) (*Progress, error) {
	goal := profile.DefaultDailyGoalMl
	p, err := s.profileRepo.Ensure(ctx, profile.New(userID))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Profile unavailable, using default goal")
	} else {
		goal = p.DailyGoalMl
	}

	local := at.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	total, err := s.intakeRepo.TotalBetween(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to read today's intake: %w", err)
	}

	return &Progress{
		TotalMl:    total,
		GoalMl:     goal,
		Percentage: float64(total) / float64(goal) * 100,
	}, nil
}
