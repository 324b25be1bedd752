package profile

import "context"

// Repository is the Profile Store. At most one profile exists per UserID.
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	// Ensure inserts p only when no profile exists for p.UserID and returns the stored profile.
	Ensure(ctx context.Context, p *Profile) (*Profile, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}
