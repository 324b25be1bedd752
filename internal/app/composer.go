// internal/app/composer.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

const (
	defaultUserName               = "Hydration Champion"
	DefaultPersonalizationTimeout = 8 * time.Second
	goalCompletionDescriptor      = "100% goal completion"
)

// Personalizer turns a user name and milestone descriptor into message text.
type Personalizer interface {
	Personalize(ctx context.Context, userName, milestoneType string) (string, error)
}

// Composer builds milestone message text. Personalization is optional and
// bounded; the template fallback is always available.
type Composer struct {
	personalizer Personalizer
	timeout      time.Duration
	logger       logrus.FieldLogger
}

func NewComposer(p Personalizer, timeout time.Duration, logger logrus.FieldLogger) *Composer {
	if timeout <= 0 {
		timeout = DefaultPersonalizationTimeout
	}
	return &Composer{personalizer: p, timeout: timeout, logger: logger}
}

// DescribeLevel returns the descriptor handed to the personalizer and matched by templates.
func DescribeLevel(level milestone.Level) string {
	if level == milestone.Level100 {
		return goalCompletionDescriptor
	}
	return fmt.Sprintf("%d%%", int(level))
}

func KindForLevel(level milestone.Level) notification.Kind {
	return level.Kind()
}

// Compose never returns an empty string.
func (c *Composer) Compose(ctx context.Context, userName, descriptor string) string {
	name := displayName(userName)
	if text, ok := c.Personalize(ctx, name, descriptor); ok {
		return text
	}
	return fallbackMessage(name, descriptor)
}

// Personalize runs the personalizer under the composer timeout. It reports
// false on error, timeout or blank text.
func (c *Composer) Personalize(ctx context.Context, userName, descriptor string) (string, bool) {
	if c.personalizer == nil {
		return "", false
	}
	log := c.logger.WithField("milestone", descriptor)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.personalizer.Personalize(ctx, displayName(userName), descriptor)
		done <- result{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			log.WithError(r.err).Warn("Personalization failed, using template")
			return "", false
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			log.Warn("Personalization returned empty text, using template")
			return "", false
		}
		return text, true
	case <-ctx.Done():
		log.WithField("timeout", c.timeout).Warn("Personalization timed out, using template")
		return "", false
	}
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return defaultUserName
	}
	return name
}

func fallbackMessage(name, descriptor string) string {
	switch {
	case strings.Contains(descriptor, "25%"):
		return fmt.Sprintf("%s, you're 25%% of the way to your hydration goal! Keep it up!", name)
	case strings.Contains(descriptor, "50%"):
		return fmt.Sprintf("%s, halfway there! You've reached 50%% of your daily water goal.", name)
	case strings.Contains(descriptor, "75%"):
		return fmt.Sprintf("%s, you're 75%% done! Almost at your daily hydration goal!", name)
	case strings.Contains(descriptor, "100%"), strings.Contains(descriptor, "goal completion"):
		return fmt.Sprintf("Great job %s! You've completed your daily hydration goal!", name)
	default:
		return fmt.Sprintf("%s, remember to stay hydrated throughout your day!", name)
	}
}
