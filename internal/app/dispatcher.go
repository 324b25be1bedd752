// internal/app/dispatcher.go
package app

import (
	"context"

	"hydration_notification_bot/internal/domain/delivery"
	"hydration_notification_bot/internal/domain/profile"

	"github.com/sirupsen/logrus"
)

const (
	reasonRemindersDisabled = "reminders disabled"
	reasonMethodNone        = "reminder method not set"
	reasonNoChannel         = "no valid delivery channel configured"
	reasonAllFailed         = "all channels failed"
	reasonSenderMissing     = "channel not configured"
)

type step struct {
	channel delivery.Channel
	address string
}

// Dispatcher delivers one message along the fallback chain for a profile.
type Dispatcher struct {
	senders map[delivery.Channel]delivery.Sender
	logger  logrus.FieldLogger
}

func NewDispatcher(logger logrus.FieldLogger, senders ...delivery.Sender) *Dispatcher {
	m := make(map[delivery.Channel]delivery.Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Dispatcher{senders: m, logger: logger}
}

// plan lists the channel steps for p in the order they must be tried.
// SMS falls back to WhatsApp on the same number, both fall back to email.
// WhatsApp never falls back to SMS.
func plan(p *profile.Profile) []step {
	var steps []step
	switch p.PreferredMethod {
	case profile.MethodSMS:
		if p.HasPhone() {
			steps = append(steps,
				step{channel: delivery.ChannelSMS, address: p.PhoneNumber},
				step{channel: delivery.ChannelWhatsApp, address: p.PhoneNumber},
			)
		}
	case profile.MethodWhatsApp:
		if p.HasPhone() {
			steps = append(steps, step{channel: delivery.ChannelWhatsApp, address: p.PhoneNumber})
		}
	}
	if p.HasEmail() {
		steps = append(steps, step{channel: delivery.ChannelEmail, address: p.Email})
	}
	return steps
}

// Dispatch attempts the steps sequentially and stops at the first success.
// Disabled reminders and the "none" method are skips, not failures.
func (d *Dispatcher) Dispatch(ctx context.Context, p *profile.Profile, text string) delivery.Attempt {
	if p == nil {
		return delivery.Attempt{ErrorDetail: reasonNoChannel}
	}
	log := d.logger.WithFields(logrus.Fields{
		"user_id": p.UserID,
		"method":  p.PreferredMethod,
	})

	if !p.RemindersEnabled {
		log.Info("Reminders disabled, external delivery skipped")
		return delivery.Attempt{Skipped: true, ErrorDetail: reasonRemindersDisabled}
	}
	if p.PreferredMethod == profile.MethodNone {
		log.Info("No reminder method selected, external delivery skipped")
		return delivery.Attempt{Skipped: true, ErrorDetail: reasonMethodNone}
	}

	steps := plan(p)
	if len(steps) == 0 {
		log.Warn("No deliverable channel for profile")
		return delivery.Attempt{ErrorDetail: reasonNoChannel}
	}

	var (
		attempt delivery.Attempt
		lastErr string
	)
	for i, s := range steps {
		attempt.Channel = s.channel
		attempt.FallbackChain = append(attempt.FallbackChain, s.channel)
		stepLog := log.WithFields(logrus.Fields{"channel": s.channel, "step": i + 1})

		out := delivery.Failed(reasonSenderMissing)
		if sender, ok := d.senders[s.channel]; ok {
			out = sender.Send(ctx, s.address, text)
		}

		if out.Success {
			stepLog.WithField("provider_ref", out.ProviderRef).Info("Reminder delivered")
			attempt.Success = true
			attempt.ProviderRef = out.ProviderRef
			return attempt
		}
		stepLog.WithField("error", out.Error).Warn("Delivery attempt failed")
		lastErr = out.Error
	}

	attempt.ErrorDetail = reasonAllFailed
	if lastErr != "" {
		attempt.ErrorDetail += ": " + lastErr
	}
	log.WithField("fallback_chain", attempt.FallbackChain).Error("Reminder delivery exhausted every channel")
	return attempt
}
