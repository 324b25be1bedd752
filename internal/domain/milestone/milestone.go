package milestone

import "hydration_notification_bot/internal/domain/notification"

// Level is a completion percentage threshold.
type Level int

const (
	Level25  Level = 25
	Level50  Level = 50
	Level75  Level = 75
	Level100 Level = 100
)

// Levels lists every milestone in ascending order.
var Levels = []Level{Level25, Level50, Level75, Level100}

// Kind maps a level to the notification flavour: 25/50 remind, 75/100 celebrate.
func (l Level) Kind() notification.Kind {
	if l >= Level75 {
		return notification.KindAchievement
	}
	return notification.KindReminder
}

// State is the per-user milestone state for one local calendar day.
type State struct {
	Day            string // YYYY-MM-DD in the tracker's location
	Reached        map[Level]bool
	LastPercentage float64
}

// NewState returns an empty state for day.
func NewState(day string) State {
	return State{Day: day, Reached: make(map[Level]bool, len(Levels))}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := State{Day: s.Day, LastPercentage: s.LastPercentage, Reached: make(map[Level]bool, len(s.Reached))}
	for l, ok := range s.Reached {
		c.Reached[l] = ok
	}
	return c
}
