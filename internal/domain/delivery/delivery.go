package delivery

import (
	"context"
	"regexp"
	"strings"
)

// Channel is an external delivery channel.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Outcome is the result of one adapter call.
type Outcome struct {
	Success     bool
	ProviderRef string
	Error       string
}

// Failed builds a failure outcome.
func Failed(detail string) Outcome {
	return Outcome{Success: false, Error: detail}
}

// Attempt is the final result of one dispatch. It is never persisted.
type Attempt struct {
	Channel       Channel // Last channel attempted, empty if none
	Success       bool
	Skipped       bool // Deliberate no-op, not a failure
	ErrorDetail   string
	ProviderRef   string
	FallbackChain []Channel
}

// Sender delivers text to an address over a single channel. Implementations
// report transport problems through the Outcome and must return within a
// bounded time.
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, address, text string) Outcome
}

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// ValidPhone reports whether phone is in E.164 format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail requires a non-empty local part and a dotted domain segment.
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && !strings.HasSuffix(domain, ".")
}
