// internal/infra/telegram/intake_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"hydration_notification_bot/internal/app"
	"hydration_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const inboxLimit = 10

func RegisterIntakeHandlers(
	ctx context.Context,
	b *telebot.Bot,
	intakeService *app.IntakeService,
	notifRepo notification.Repository,
	baseLogger *logrus.Entry,
) {
	logIntake := func(c telebot.Context, amount int) (string, error) {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"sender_id": c.Sender().ID,
			"amount_ml": amount,
		})
		progress, err := intakeService.LogIntake(ctx, userID(c), amount)
		if err != nil {
			reply, known := userFacingError(err)
			if !known {
				handlerLogger.WithError(err).Error("Failed to log intake")
			}
			return reply, err
		}
		handlerLogger.WithField("percentage", progress.Percentage).Info("Intake logged")
		return fmt.Sprintf("💧 Logged %d ml. %s", amount, formatProgress(progress)), nil
	}

	b.Handle("/drink", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /drink <ml>, for example /drink 250", drinkKeyboard())
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("The amount must be a whole number of millilitres.")
		}
		reply, _ := logIntake(c, amount)
		return c.Send(reply, drinkKeyboard())
	})

	b.Handle("/today", func(c telebot.Context) error {
		progress, err := intakeService.Today(ctx, userID(c))
		if err != nil {
			baseLogger.WithError(err).WithField("sender_id", c.Sender().ID).Error("Failed to load today's progress")
			return c.Send(genericErrorReply)
		}
		return c.Send(formatProgress(progress), drinkKeyboard())
	})

	b.Handle("/inbox", func(c telebot.Context) error {
		list, err := notifRepo.ListByUser(ctx, userID(c), inboxLimit)
		if err != nil {
			baseLogger.WithError(err).WithField("sender_id", c.Sender().ID).Error("Failed to list notifications")
			return c.Send(genericErrorReply)
		}
		return c.Send(formatInbox(list))
	})

	b.Handle("/read", func(c telebot.Context) error {
		n, err := notifRepo.MarkAllRead(ctx, userID(c))
		if err != nil {
			baseLogger.WithError(err).WithField("sender_id", c.Sender().ID).Error("Failed to mark notifications read")
			return c.Send(genericErrorReply)
		}
		return c.Send(fmt.Sprintf("Marked %d notifications as read.", n))
	})

	// Quick-log buttons carry drink_<ml> callback data.
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		amount, err := parseDrinkCallback(data)
		if err != nil {
			c.Bot().OnError(err, c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}
		reply, err := logIntake(c, amount)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: reply})
		}
		if err := c.Respond(&telebot.CallbackResponse{Text: fmt.Sprintf("+%d ml", amount)}); err != nil {
			return err
		}
		return c.Send(reply)
	})
}
