// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"hydration_notification_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func helpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	b.WriteString("/drink <ml> - log a drink\n")
	b.WriteString("/today - show today's progress\n")
	b.WriteString("/goal <ml> - set your daily goal (500-10000)\n")
	b.WriteString("/method <sms|whatsapp|email|none> - choose how reminders reach you\n")
	b.WriteString("/phone <+number|clear> - set your phone number\n")
	b.WriteString("/email <address|clear> - set your email\n")
	b.WriteString("/reminders <on|off> - turn milestone reminders on or off\n")
	b.WriteString("/name <name> - set the name used in reminders\n")
	b.WriteString("/settings - show your settings\n")
	b.WriteString("/test - send a test reminder\n")
	b.WriteString("/inbox - show recent notifications\n")
	b.WriteString("/read - mark notifications as read\n")
	b.WriteString("/help - show this message")
	return b.String()
}

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	profileService *app.ProfileService,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		p, err := profileService.Get(ctx, userID(c))
		if err != nil {
			logCtx.WithError(err).Error("Failed to create profile for /start command")
			return c.Send(genericErrorReply)
		}

		name := p.DisplayName
		if name == "" {
			name = c.Sender().FirstName
		}
		return c.Send(fmt.Sprintf(
			"Hi %s! 💧 I track your water intake and cheer you on at 25%%, 50%%, 75%% and 100%% of your %d ml goal.\nUse /drink <ml> to log a drink and /help for everything else.",
			name, p.DailyGoalMl,
		), drinkKeyboard())
	})

	b.Handle("/help", func(c telebot.Context) error {
		startHelpLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID).Info("Processing /help command")
		return c.Send(helpText())
	})
}
