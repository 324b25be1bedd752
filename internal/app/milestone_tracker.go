// internal/app/milestone_tracker.go
package app

import (
	"math"
	"sync"
	"time"

	"hydration_notification_bot/internal/domain/milestone"

	"github.com/sirupsen/logrus"
)

const dayLayout = "2006-01-02"

type userMilestones struct {
	mu    sync.Mutex
	state milestone.State
}

// MilestoneTracker keeps today's milestone state per user. The map lock only
// guards lookups; each user's state has its own lock.
type MilestoneTracker struct {
	mu     sync.Mutex
	users  map[string]*userMilestones
	loc    *time.Location
	now    func() time.Time
	logger logrus.FieldLogger
}

func NewMilestoneTracker(loc *time.Location, now func() time.Time, logger logrus.FieldLogger) *MilestoneTracker {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &MilestoneTracker{
		users:  make(map[string]*userMilestones),
		loc:    loc,
		now:    now,
		logger: logger,
	}
}

func (t *MilestoneTracker) today() string {
	return t.now().In(t.loc).Format(dayLayout)
}

func (t *MilestoneTracker) entry(userID string, create bool) *userMilestones {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.users[userID]
	if !ok && create {
		u = &userMilestones{state: milestone.NewState(t.today())}
		t.users[userID] = u
	}
	return u
}

// freshen resets u when its state belongs to another day or is malformed.
// Caller holds u.mu.
func (u *userMilestones) freshen(today string) bool {
	if u.state.Day == today && u.state.Reached != nil {
		return false
	}
	u.state = milestone.NewState(today)
	return true
}

// CheckMilestones records percentage for userID and returns the levels it
// newly crosses today. Invalid input is logged and ignored.
func (t *MilestoneTracker) CheckMilestones(userID string, percentage float64) []milestone.Level {
	log := t.logger.WithFields(logrus.Fields{"user_id": userID, "percentage": percentage})
	if math.IsNaN(percentage) || math.IsInf(percentage, 0) || percentage < 0 {
		log.Warn("Ignoring invalid completion percentage")
		return nil
	}

	u := t.entry(userID, true)
	u.mu.Lock()
	defer u.mu.Unlock()

	today := t.today()
	if u.freshen(today) {
		log.WithField("day", today).Debug("Milestone state reset for new day")
	}

	var crossed []milestone.Level
	for _, level := range milestone.Levels {
		threshold := float64(level)
		if u.state.LastPercentage < threshold && threshold <= percentage && !u.state.Reached[level] {
			u.state.Reached[level] = true
			crossed = append(crossed, level)
		}
	}
	if percentage > u.state.LastPercentage {
		u.state.LastPercentage = percentage
	}

	if len(crossed) > 0 {
		log.WithField("levels", crossed).Info("Milestones crossed")
	}
	return crossed
}

// ResetStale clears every state left over from a previous day and returns
// how many were reset.
func (t *MilestoneTracker) ResetStale() int {
	t.mu.Lock()
	users := make([]*userMilestones, 0, len(t.users))
	for _, u := range t.users {
		users = append(users, u)
	}
	t.mu.Unlock()

	today := t.today()
	reset := 0
	for _, u := range users {
		u.mu.Lock()
		if u.freshen(today) {
			reset++
		}
		u.mu.Unlock()
	}
	if reset > 0 {
		t.logger.WithFields(logrus.Fields{"day": today, "reset": reset}).Info("Milestone states rolled over")
	}
	return reset
}

// Snapshot returns a copy of today's state for userID.
func (t *MilestoneTracker) Snapshot(userID string) milestone.State {
	today := t.today()
	u := t.entry(userID, false)
	if u == nil {
		return milestone.NewState(today)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state.Day != today || u.state.Reached == nil {
		return milestone.NewState(today)
	}
	return u.state.Clone()
}
