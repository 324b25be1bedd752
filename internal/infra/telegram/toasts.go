// internal/infra/telegram/toasts.go
package telegram

import (
	"context"
	"strconv"

	"hydration_notification_bot/internal/app"
	domainTelegram "hydration_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// EventForwarder shows milestone and delivery-failure events to the user as chat messages.
type EventForwarder struct {
	client domainTelegram.Client
	logger *logrus.Entry
}

func NewEventForwarder(client domainTelegram.Client, baseLogger *logrus.Entry) *EventForwarder {
	return &EventForwarder{client: client, logger: baseLogger.WithField("component", "event_forwarder")}
}

// Run consumes events until ctx is done or the channel is closed.
func (f *EventForwarder) Run(ctx context.Context, events <-chan app.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			f.forward(e)
		}
	}
}

func (f *EventForwarder) forward(e app.Event) {
	text, ok := toastText(e)
	if !ok {
		return
	}
	logCtx := f.logger.WithFields(logrus.Fields{"user_id": e.UserID, "event": e.Kind})

	chatID, err := strconv.ParseInt(e.UserID, 10, 64)
	if err != nil {
		logCtx.WithError(err).Warn("User ID is not a Telegram chat, toast skipped")
		return
	}
	if err := f.client.SendMessage(chatID, text, nil); err != nil {
		logCtx.WithError(err).Error("Failed to send toast")
		return
	}
	logCtx.Debug("Toast sent")
}
