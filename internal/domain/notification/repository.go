// internal/domain/notification/repository.go
package notification

import "context"

// Repository is the append-only Notification Log.
type Repository interface {
	Append(ctx context.Context, n *Notification) error

	// Presentation layer methods
	ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
