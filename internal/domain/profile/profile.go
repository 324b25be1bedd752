package profile

import (
	"strings"
	"time"
)

// Method is the preferred external delivery method.
type Method string

const (
	MethodSMS      Method = "sms"
	MethodWhatsApp Method = "whatsapp"
	MethodEmail    Method = "email"
	MethodNone     Method = "none"
)

// DefaultDailyGoalMl is applied whenever a stored goal is missing or not positive.
const DefaultDailyGoalMl = 3000

// Profile holds the notification preferences and hydration goal of one user.
type Profile struct {
	UserID           string
	DisplayName      string
	RemindersEnabled bool
	PreferredMethod  Method
	PhoneNumber      string // Empty when not set
	Email            string // Empty when not set
	DailyGoalMl      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParseMethod maps user input to a Method. Unknown values report false.
func ParseMethod(raw string) (Method, bool) {
	switch Method(strings.ToLower(strings.TrimSpace(raw))) {
	case MethodSMS:
		return MethodSMS, true
	case MethodWhatsApp:
		return MethodWhatsApp, true
	case MethodEmail:
		return MethodEmail, true
	case MethodNone, "":
		return MethodNone, true
	default:
		return MethodNone, false
	}
}

// New returns a profile for userID with every default applied.
func New(userID string) *Profile {
	return &Profile{
		UserID:          userID,
		PreferredMethod: MethodNone,
		DailyGoalMl:     DefaultDailyGoalMl,
	}
}

// Normalize fills defaults and canonicalizes fields in place. Stores call it
// on every read so the rest of the code can rely on a fully populated value.
func Normalize(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	p.UserID = strings.TrimSpace(p.UserID)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Email = strings.TrimSpace(p.Email)
	p.PreferredMethod, _ = ParseMethod(string(p.PreferredMethod))
	if p.DailyGoalMl <= 0 {
		p.DailyGoalMl = DefaultDailyGoalMl
	}
	return p
}

// HasPhone reports whether a phone number is stored.
func (p *Profile) HasPhone() bool { return p.PhoneNumber != "" }

// HasEmail reports whether an email address is stored.
func (p *Profile) HasEmail() bool { return p.Email != "" }
