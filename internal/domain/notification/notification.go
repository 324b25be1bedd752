// internal/domain/notification/notification.go
package notification

import "time"

// Kind classifies an in-app notification.
type Kind string

const (
	KindReminder    Kind = "reminder"
	KindAchievement Kind = "achievement"
	KindTip         Kind = "tip"
	KindInfo        Kind = "info"
)

// Notification is an outbound record written when a message is composed.
// SentAt is the composition time, not the delivery time.
type Notification struct {
	ID     string
	UserID string
	Kind   Kind
	Body   string
	SentAt time.Time
	Read   bool // Mutated only by the presentation layer
}
