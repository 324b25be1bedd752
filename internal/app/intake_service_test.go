package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/profile"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntakeFixture(loc *time.Location, ps ...*profile.Profile) (*IntakeService, *fakeIntakeRepo, *fakeProfileRepo, *fakeNotificationService, *fakeClock) {
	log, _ := test.NewNullLogger()
	intakes := &fakeIntakeRepo{}
	profiles := newFakeProfileRepo(ps...)
	notifications := &fakeNotificationService{}
	clock := newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	svc := NewIntakeService(intakes, profiles, notifications, loc, log)
	svc.now = clock.Now
	return svc, intakes, profiles, notifications, clock
}

func TestLogIntake_ReportsProgressAndNotifies(t *testing.T) {
	p := profile.New("u1")
	p.DailyGoalMl = 2000
	svc, _, _, notifications, _ := newIntakeFixture(time.UTC, p)
	notifications.levels = []milestone.Level{milestone.Level25}

	progress, err := svc.LogIntake(context.Background(), "u1", 600)

	require.NoError(t, err)
	assert.Equal(t, 600, progress.TotalMl)
	assert.Equal(t, 2000, progress.GoalMl)
	assert.InDelta(t, 30.0, progress.Percentage, 0.001)
	assert.Equal(t, []milestone.Level{milestone.Level25}, progress.Reached)
	assert.Equal(t, []float64{30}, notifications.percentages)
}

func TestLogIntake_AccumulatesWithinLocalDay(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)
	svc, intakes, _, notifications, clock := newIntakeFixture(sydney)

	// 09:00 UTC is 19:00 AEST; the local day began at 14:00 UTC the day before.
	_, err := svc.LogIntake(context.Background(), "u1", 750)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	progress, err := svc.LogIntake(context.Background(), "u1", 750)
	require.NoError(t, err)

	assert.Equal(t, 1500, progress.TotalMl)
	assert.InDelta(t, 50.0, progress.Percentage, 0.001)
	assert.Equal(t, []float64{25, 50}, notifications.percentages)
	assert.True(t, intakes.lastFrom.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, sydney)))
	assert.True(t, intakes.lastTo.Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, sydney)))
}

func TestLogIntake_RejectsInvalidAmounts(t *testing.T) {
	svc, intakes, _, notifications, _ := newIntakeFixture(time.UTC)

	for _, amount := range []int{0, -250, 5001} {
		_, err := svc.LogIntake(context.Background(), "u1", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Empty(t, intakes.entries)
	assert.Empty(t, notifications.percentages)
}

func TestLogIntake_StoreFailureIsReturned(t *testing.T) {
	svc, intakes, _, notifications, _ := newIntakeFixture(time.UTC)
	boom := errors.New("insert failed")
	intakes.addErr = boom

	_, err := svc.LogIntake(context.Background(), "u1", 250)

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, notifications.percentages)
}

func TestLogIntake_ProfileFailureUsesDefaultGoal(t *testing.T) {
	svc, _, profiles, notifications, _ := newIntakeFixture(time.UTC)
	profiles.ensureErr = errors.New("profiles unavailable")

	progress, err := svc.LogIntake(context.Background(), "u1", 1500)

	require.NoError(t, err)
	assert.Equal(t, profile.DefaultDailyGoalMl, progress.GoalMl)
	assert.Equal(t, []float64{50}, notifications.percentages)
}

func TestToday(t *testing.T) {
	svc, _, _, notifications, _ := newIntakeFixture(time.UTC)
	_, err := svc.LogIntake(context.Background(), "u1", 300)
	require.NoError(t, err)

	progress, err := svc.Today(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 300, progress.TotalMl)
	assert.Empty(t, progress.Reached)
	assert.Len(t, notifications.percentages, 1, "reading progress does not notify")
}

func TestLogIntake_WithRealNotificationPipeline(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := newSenders(false, false, false)
	p := testProfile(profile.MethodSMS, "", testEmail)
	p.DailyGoalMl = 1000
	profiles := newFakeProfileRepo(p)
	notifRepo := &fakeNotificationRepo{}
	clock := newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	notifications := NewNotificationServiceImpl(profiles, notifRepo,
		NewMilestoneTracker(time.UTC, clock.Now, log),
		NewComposer(nil, 0, log),
		NewDispatcher(log, s.sms, s.whatsapp, s.email),
		NewEventBus(log), log)
	intakes := NewIntakeService(&fakeIntakeRepo{}, profiles, notifications, time.UTC, log)
	intakes.now = clock.Now

	_, err := intakes.LogIntake(context.Background(), "u1", 200)
	require.NoError(t, err)
	progress, err := intakes.LogIntake(context.Background(), "u1", 100)
	require.NoError(t, err)
	notifications.Wait()

	assert.Equal(t, []milestone.Level{milestone.Level25}, progress.Reached)
	// SMS without a phone number skips straight to email.
	assert.Empty(t, s.sms.Calls())
	assert.Len(t, s.email.Calls(), 1)
	assert.Equal(t, 1, s.total())
}
