package intake

import (
	"context"
	"time"
)

// Entry is a single logged drink.
type Entry struct {
	ID       int64
	UserID   string
	AmountMl int
	LoggedAt time.Time
}

// Repository stores water log entries.
type Repository interface {
	Add(ctx context.Context, e *Entry) error
	// TotalBetween sums AmountMl for userID with from <= LoggedAt < to.
	TotalBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}
