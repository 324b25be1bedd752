// internal/app/notification_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hydration_notification_bot/internal/domain/delivery"
	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/notification"
	"hydration_notification_bot/internal/domain/profile"
	idb "hydration_notification_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Test-send validation errors. Their messages are shown to the user as is.
var (
	ErrReminderMethodNotSet = fmt.Errorf("reminder method not set")
	ErrPhoneRequired        = fmt.Errorf("phone number required for SMS/WhatsApp reminders")
	ErrEmailRequired        = fmt.Errorf("email required for email reminders")
	ErrGoalMissing          = fmt.Errorf("hydration goal missing")
	ErrDeliveryFailed       = fmt.Errorf("failed to deliver reminder")
)

const (
	testDescriptor     = "test notification"
	testMessagePrefix  = "🧪 TEST: "
	defaultTestMessage = "🧪 This is a test reminder from your hydration app! If you received this, your reminders are working properly."
)

var dailyTips = []string{
	"💧 Start your day hydrated! People who drink water first thing in the morning have better energy levels.",
	"💧 Today's a new day to hit your hydration goals! Your body will thank you.",
	"💧 Did you know? Being properly hydrated can improve brain function by up to 14%!",
	"💧 Let's make today a great hydration day! Your cells need that water!",
	"💧 Morning tip: Try drinking a full glass of water before your morning coffee or tea.",
	"💧 Challenge for today: Try to finish 50% of your water goal before lunch!",
	"💧 Water fact: Proper hydration can reduce headaches by up to 40%.",
	"💧 Remember: Thirst is often a sign you're already dehydrated. Stay ahead!",
}

// NotificationService turns intake progress into milestone notifications.
type NotificationService interface {
	// ProcessIntake records the completion percentage and starts one background
	// notification per newly crossed milestone. It never fails the caller.
	ProcessIntake(ctx context.Context, userID string, percentage float64) []milestone.Level
	// SendTestNotification validates the profile and delivers a test message synchronously.
	SendTestNotification(ctx context.Context, userID string) (delivery.Attempt, error)
	PostDailyTip(ctx context.Context) error
	ResetStaleMilestones() int
	// Wait blocks until every background notification has finished.
	Wait()
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	profileRepo profile.Repository
	notifRepo   notification.Repository
	tracker     *MilestoneTracker
	composer    *Composer
	dispatcher  *Dispatcher
	events      *EventBus
	logger      logrus.FieldLogger
	now         func() time.Time
	wg          sync.WaitGroup
}

func NewNotificationServiceImpl(
	pr profile.Repository,
	nr notification.Repository,
	tracker *MilestoneTracker,
	composer *Composer,
	dispatcher *Dispatcher,
	events *EventBus,
	logger logrus.FieldLogger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		profileRepo: pr,
		notifRepo:   nr,
		tracker:     tracker,
		composer:    composer,
		dispatcher:  dispatcher,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *NotificationServiceImpl) ProcessIntake(ctx context.Context, userID string, percentage float64) []milestone.Level {
	levels := s.tracker.CheckMilestones(userID, percentage)
	if len(levels) == 0 {
		return nil
	}

	// Background work must outlive the request that triggered it.
	bg := context.WithoutCancel(ctx)
	for _, level := range levels {
		s.events.Publish(Event{Kind: EventMilestoneReached, UserID: userID, Level: level, At: s.now()})
		s.wg.Add(1)
		go func(level milestone.Level) {
			defer s.wg.Done()
			s.notifyMilestone(bg, userID, level)
		}(level)
	}
	return levels
}

func (s *NotificationServiceImpl) notifyMilestone(ctx context.Context, userID string, level milestone.Level) {
	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "level": int(level)})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Milestone notification aborted")
		}
	}()

	p, err := s.profileRepo.Ensure(ctx, profile.New(userID))
	if err != nil {
		log.WithError(err).Error("Failed to load profile, milestone notification dropped")
		return
	}

	text := s.composer.Compose(ctx, p.DisplayName, DescribeLevel(level))
	record := &notification.Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   KindForLevel(level),
		Body:   text,
		SentAt: s.now(),
	}
	if err := s.notifRepo.Append(ctx, record); err != nil {
		// Delivery does not depend on the log write.
		log.WithError(err).Error("Failed to append notification")
	}

	attempt := s.dispatcher.Dispatch(ctx, p, text)
	switch {
	case attempt.Skipped:
		log.WithField("reason", attempt.ErrorDetail).Info("Milestone logged without external delivery")
	case attempt.Success:
		s.events.Publish(Event{Kind: EventDelivered, UserID: userID, Level: level, Attempt: attempt, At: s.now()})
	default:
		log.WithField("error", attempt.ErrorDetail).Warn("Milestone reminder not delivered")
		s.events.Publish(Event{Kind: EventDeliveryFailed, UserID: userID, Level: level, Attempt: attempt, At: s.now()})
	}
}

// validateForTest fails fast with the first missing piece of configuration.
func validateForTest(p *profile.Profile) error {
	switch p.PreferredMethod {
	case profile.MethodSMS, profile.MethodWhatsApp:
		if !p.HasPhone() {
			return ErrPhoneRequired
		}
	case profile.MethodEmail:
		if !p.HasEmail() {
			return ErrEmailRequired
		}
	default:
		return ErrReminderMethodNotSet
	}
	if p.DailyGoalMl <= 0 {
		return ErrGoalMissing
	}
	return nil
}

// SendTestNotification ignores the reminders switch and does not write to
// the notification log.
func (s *NotificationServiceImpl) SendTestNotification(ctx context.Context, userID string) (delivery.Attempt, error) {
	log := s.logger.WithField("user_id", userID)

	p, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, idb.ErrProfileNotFound) {
			return delivery.Attempt{}, fmt.Errorf("%w, save your profile first", idb.ErrProfileNotFound)
		}
		log.WithError(err).Error("Failed to load profile for test notification")
		return delivery.Attempt{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if err := validateForTest(p); err != nil {
		log.WithError(err).Info("Test notification rejected")
		return delivery.Attempt{}, err
	}

	text := defaultTestMessage
	if personalized, ok := s.composer.Personalize(ctx, p.DisplayName, testDescriptor); ok {
		text = testMessagePrefix + personalized
	}

	target := *p
	target.RemindersEnabled = true
	attempt := s.dispatcher.Dispatch(ctx, &target, text)
	if !attempt.Success {
		log.WithField("error", attempt.ErrorDetail).Warn("Test notification failed")
		return attempt, fmt.Errorf("%w: %s", ErrDeliveryFailed, attempt.ErrorDetail)
	}
	log.WithField("channel", attempt.Channel).Info("Test notification delivered")
	return attempt, nil
}

// PostDailyTip writes one in-app tip per known user. Tips are never sent externally.
func (s *NotificationServiceImpl) PostDailyTip(ctx context.Context) error {
	userIDs, err := s.profileRepo.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for daily tip: %w", err)
	}

	now := s.now()
	tip := dailyTips[now.YearDay()%len(dailyTips)]
	failed := 0
	for _, userID := range userIDs {
		n := &notification.Notification{
			ID:     uuid.NewString(),
			UserID: userID,
			Kind:   notification.KindTip,
			Body:   tip,
			SentAt: now,
		}
		if err := s.notifRepo.Append(ctx, n); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("Failed to post daily tip")
			failed++
		}
	}
	s.logger.WithFields(logrus.Fields{"users": len(userIDs), "failed": failed}).Info("Daily tip posted")
	if failed > 0 {
		return fmt.Errorf("daily tip failed for %d of %d users", failed, len(userIDs))
	}
	return nil
}

func (s *NotificationServiceImpl) ResetStaleMilestones() int {
	return s.tracker.ResetStale()
}

func (s *NotificationServiceImpl) Wait() {
	s.wg.Wait()
}
