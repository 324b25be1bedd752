// internal/app/profile_service.go
package app

import (
	"context"
	"fmt"
	"strings"

	"hydration_notification_bot/internal/domain/delivery"
	"hydration_notification_bot/internal/domain/profile"
)

// Settings validation errors
var ErrInvalidPhone = fmt.Errorf("invalid phone number, use international format like +61412345678")
var ErrInvalidEmail = fmt.Errorf("invalid email address")
var ErrInvalidGoal = fmt.Errorf("daily goal must be between 500 and 10000 ml")
var ErrInvalidMethod = fmt.Errorf("reminder method must be one of sms, whatsapp, email, none")

const (
	minDailyGoalMl = 500
	maxDailyGoalMl = 10000
)

type ProfileService struct {
	profileRepo profile.Repository
}

func NewProfileService(pr profile.Repository) *ProfileService {
	return &ProfileService{profileRepo: pr}
}

// Get returns the stored profile, creating it with defaults on first use.
func (s *ProfileService) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.profileRepo.Ensure(ctx, profile.New(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) update(ctx context.Context, userID string, apply func(p *profile.Profile) error) (*profile.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) SetDailyGoal(ctx context.Context, userID string, goalMl int) (*profile.Profile, error) {
	if goalMl < minDailyGoalMl || goalMl > maxDailyGoalMl {
		return nil, ErrInvalidGoal
	}
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.DailyGoalMl = goalMl
		return nil
	})
}

func (s *ProfileService) SetMethod(ctx context.Context, userID, raw string) (*profile.Profile, error) {
	method, ok := profile.ParseMethod(raw)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidMethod
	}
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.PreferredMethod = method
		return nil
	})
}

// SetPhone stores phone in E.164 form. An empty value clears it.
func (s *ProfileService) SetPhone(ctx context.Context, userID, phone string) (*profile.Profile, error) {
	phone = strings.TrimSpace(phone)
	if phone != "" && !delivery.ValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.PhoneNumber = phone
		return nil
	})
}

// SetEmail stores email. An empty value clears it.
func (s *ProfileService) SetEmail(ctx context.Context, userID, email string) (*profile.Profile, error) {
	email = strings.TrimSpace(email)
	if email != "" && !delivery.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.Email = email
		return nil
	})
}

func (s *ProfileService) SetRemindersEnabled(ctx context.Context, userID string, enabled bool) (*profile.Profile, error) {
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.RemindersEnabled = enabled
		return nil
	})
}

func (s *ProfileService) SetDisplayName(ctx context.Context, userID, name string) (*profile.Profile, error) {
	return s.update(ctx, userID, func(p *profile.Profile) error {
		p.DisplayName = strings.TrimSpace(name)
		return nil
	})
}
