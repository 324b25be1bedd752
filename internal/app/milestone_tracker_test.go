package app

import (
	"math"
	"sync"
	"testing"
	"time"

	"hydration_notification_bot/internal/domain/milestone"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(clock *fakeClock, loc *time.Location) (*MilestoneTracker, *test.Hook) {
	log, hook := test.NewNullLogger()
	return NewMilestoneTracker(loc, clock.Now, log), hook
}

func TestCheckMilestones_TwentyToThirtyFiresTwentyFive(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	assert.Empty(t, tracker.CheckMilestones("u1", 20))
	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
}

func TestCheckMilestones_EachLevelAtMostOncePerDay(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	fired := map[milestone.Level]int{}
	for _, pct := range []float64{10, 30, 20, 30, 24, 26, 60, 40, 49, 51, 80, 74, 76, 110, 90, 100, 120} {
		for _, l := range tracker.CheckMilestones("u1", pct) {
			fired[l]++
		}
	}

	assert.Equal(t, map[milestone.Level]int{
		milestone.Level25:  1,
		milestone.Level50:  1,
		milestone.Level75:  1,
		milestone.Level100: 1,
	}, fired)
}

func TestCheckMilestones_IdempotentForSameOrLowerValues(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	require.Equal(t, []milestone.Level{milestone.Level25, milestone.Level50}, tracker.CheckMilestones("u1", 55))
	for i := 0; i < 3; i++ {
		assert.Empty(t, tracker.CheckMilestones("u1", 55))
		assert.Empty(t, tracker.CheckMilestones("u1", 12))
	}

	state := tracker.Snapshot("u1")
	assert.Equal(t, 55.0, state.LastPercentage, "last percentage never decreases within a day")
}

func TestCheckMilestones_AboveHundredCrossesEveryLevel(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	assert.Equal(t, milestone.Levels, tracker.CheckMilestones("u1", 150))
}

func TestCheckMilestones_ExactThresholdCounts(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 25))
	assert.Empty(t, tracker.CheckMilestones("u1", 25))
}

func TestCheckMilestones_InvalidInputIsIgnored(t *testing.T) {
	tracker, hook := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	for _, pct := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5} {
		assert.Empty(t, tracker.CheckMilestones("u1", pct))
	}
	require.Len(t, hook.AllEntries(), 4)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// State untouched by the rejected values.
	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
}

func TestCheckMilestones_DayRolloverAllowsRefire(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 10, 14, 23, 50, 0, 0, time.UTC))
	tracker, _ := newTestTracker(clock, time.UTC)

	require.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
	clock.Advance(20 * time.Minute)

	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
	assert.Equal(t, "2026-10-15", tracker.Snapshot("u1").Day)
}

func TestCheckMilestones_DayFollowsConfiguredLocation(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)
	// 13:55 UTC is 23:55 in AEST.
	clock := newFakeClock(time.Date(2026, 10, 14, 13, 55, 0, 0, time.UTC))
	tracker, _ := newTestTracker(clock, sydney)

	require.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
	assert.Equal(t, "2026-10-14", tracker.Snapshot("u1").Day)

	// Still 14 October in UTC, already 15 October locally.
	clock.Advance(10 * time.Minute)
	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
}

func TestResetStale(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	tracker, _ := newTestTracker(clock, time.UTC)

	tracker.CheckMilestones("u1", 60)
	tracker.CheckMilestones("u2", 30)
	assert.Zero(t, tracker.ResetStale())

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 2, tracker.ResetStale())
	assert.Zero(t, tracker.ResetStale())

	state := tracker.Snapshot("u1")
	assert.Empty(t, state.Reached)
	assert.Zero(t, state.LastPercentage)
}

func TestSnapshot_IsACopy(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)
	tracker.CheckMilestones("u1", 30)

	snap := tracker.Snapshot("u1")
	snap.Reached[milestone.Level50] = true

	assert.Equal(t, []milestone.Level{milestone.Level50}, tracker.CheckMilestones("u1", 55))
	assert.Empty(t, tracker.Snapshot("nobody").Reached)
}

func TestCheckMilestones_ConcurrentUpdatesFireOnce(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	var (
		mu    sync.Mutex
		fired = map[milestone.Level]int{}
		wg    sync.WaitGroup
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(pct float64) {
			defer wg.Done()
			levels := tracker.CheckMilestones("u1", pct)
			mu.Lock()
			for _, l := range levels {
				fired[l]++
			}
			mu.Unlock()
		}(float64(50 + i%8))
	}
	wg.Wait()

	assert.Equal(t, map[milestone.Level]int{milestone.Level25: 1, milestone.Level50: 1}, fired)
}

func TestCheckMilestones_UsersAreIndependent(t *testing.T) {
	tracker, _ := newTestTracker(newFakeClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), time.UTC)

	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u1", 30))
	assert.Equal(t, []milestone.Level{milestone.Level25}, tracker.CheckMilestones("u2", 30))
}
