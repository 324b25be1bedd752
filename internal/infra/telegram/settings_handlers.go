package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hydration_notification_bot/internal/app"
	"hydration_notification_bot/internal/domain/profile"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterSettingsHandlers registers the profile commands and /test.
func RegisterSettingsHandlers(
	ctx context.Context,
	b *telebot.Bot,
	profileService *app.ProfileService,
	notificationService app.NotificationService,
	baseLogger *logrus.Entry,
) {
	// update wraps a profile mutation with logging and the shared reply format.
	update := func(c telebot.Context, command string, apply func(userID string) (*profile.Profile, error), okText func(p *profile.Profile) string) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   command,
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		p, err := apply(userID(c))
		if err != nil {
			reply, known := userFacingError(err)
			if known {
				handlerLogger.WithError(err).Warn("Invalid settings value")
			} else {
				handlerLogger.WithError(err).Error("Failed to update profile")
			}
			return c.Send(reply)
		}
		handlerLogger.Info("Profile updated")
		return c.Send(okText(p))
	}

	b.Handle("/goal", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /goal <ml>, for example /goal 2500")
		}
		goal, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("The goal must be a whole number of millilitres.")
		}
		return update(c, "/goal", func(id string) (*profile.Profile, error) {
			return profileService.SetDailyGoal(ctx, id, goal)
		}, func(p *profile.Profile) string {
			return fmt.Sprintf("Daily goal set to %d ml.", p.DailyGoalMl)
		})
	})

	b.Handle("/method", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /method <sms|whatsapp|email|none>")
		}
		return update(c, "/method", func(id string) (*profile.Profile, error) {
			return profileService.SetMethod(ctx, id, args[0])
		}, func(p *profile.Profile) string {
			return fmt.Sprintf("Reminder method set to %s.", p.PreferredMethod)
		})
	})

	b.Handle("/phone", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /phone <+61412345678|clear>")
		}
		value := args[0]
		if strings.EqualFold(value, "clear") {
			value = ""
		}
		return update(c, "/phone", func(id string) (*profile.Profile, error) {
			return profileService.SetPhone(ctx, id, value)
		}, func(p *profile.Profile) string {
			if !p.HasPhone() {
				return "Phone number removed."
			}
			return fmt.Sprintf("Phone number set to %s.", p.PhoneNumber)
		})
	})

	b.Handle("/email", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /email <address|clear>")
		}
		value := args[0]
		if strings.EqualFold(value, "clear") {
			value = ""
		}
		return update(c, "/email", func(id string) (*profile.Profile, error) {
			return profileService.SetEmail(ctx, id, value)
		}, func(p *profile.Profile) string {
			if !p.HasEmail() {
				return "Email removed."
			}
			return fmt.Sprintf("Email set to %s.", p.Email)
		})
	})

	b.Handle("/reminders", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /reminders <on|off>")
		}
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return c.Send("Usage: /reminders <on|off>")
		}
		return update(c, "/reminders", func(id string) (*profile.Profile, error) {
			return profileService.SetRemindersEnabled(ctx, id, enabled)
		}, func(p *profile.Profile) string {
			if p.RemindersEnabled {
				return "Milestone reminders are on."
			}
			return "Milestone reminders are off."
		})
	})

	b.Handle("/name", func(c telebot.Context) error {
		name := strings.TrimSpace(c.Message().Payload)
		if name == "" {
			return c.Send("Usage: /name <name>")
		}
		return update(c, "/name", func(id string) (*profile.Profile, error) {
			return profileService.SetDisplayName(ctx, id, name)
		}, func(p *profile.Profile) string {
			return fmt.Sprintf("I'll call you %s.", p.DisplayName)
		})
	})

	b.Handle("/settings", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/settings",
			"sender_id": c.Sender().ID,
		})
		p, err := profileService.Get(ctx, userID(c))
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to load profile")
			return c.Send(genericErrorReply)
		}
		return c.Send(formatProfile(p))
	})

	b.Handle("/test", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/test",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		attempt, err := notificationService.SendTestNotification(ctx, userID(c))
		if err != nil {
			reply, known := userFacingError(err)
			if !known {
				handlerLogger.WithError(err).Error("Test notification failed")
			}
			return c.Send(reply)
		}
		return c.Send(fmt.Sprintf("✅ Test reminder sent via %s.", attempt.Channel))
	})
}
