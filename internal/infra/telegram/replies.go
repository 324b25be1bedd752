// internal/infra/telegram/replies.go
package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hydration_notification_bot/internal/app"
	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/notification"
	"hydration_notification_bot/internal/domain/profile"
	idb "hydration_notification_bot/internal/infra/database"

	"gopkg.in/telebot.v3"
)

const genericErrorReply = "Something went wrong, please try again later."

var quickDrinkAmounts = []int{250, 500}

func userID(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

// userFacingError maps known service errors to their message and hides the rest.
func userFacingError(err error) (string, bool) {
	for _, known := range []error{
		app.ErrInvalidAmount, app.ErrInvalidGoal, app.ErrInvalidMethod, app.ErrInvalidPhone, app.ErrInvalidEmail,
		app.ErrReminderMethodNotSet, app.ErrPhoneRequired, app.ErrEmailRequired, app.ErrGoalMissing,
		app.ErrDeliveryFailed, idb.ErrProfileNotFound,
	} {
		if errors.Is(err, known) {
			return capitalize(err.Error()), true
		}
	}
	return genericErrorReply, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatProgress(p *app.Progress) string {
	return fmt.Sprintf("Today: %d / %d ml (%.0f%%)", p.TotalMl, p.GoalMl, p.Percentage)
}

func formatProfile(p *profile.Profile) string {
	var b strings.Builder
	name := p.DisplayName
	if name == "" {
		name = "not set"
	}
	reminders := "off"
	if p.RemindersEnabled {
		reminders = "on"
	}
	phone, email := p.PhoneNumber, p.Email
	if phone == "" {
		phone = "not set"
	}
	if email == "" {
		email = "not set"
	}
	b.WriteString("Your settings:\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Daily goal: %d ml\n", p.DailyGoalMl)
	fmt.Fprintf(&b, "Reminders: %s\n", reminders)
	fmt.Fprintf(&b, "Method: %s\n", p.PreferredMethod)
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	fmt.Fprintf(&b, "Email: %s", email)
	return b.String()
}

func formatInbox(list []*notification.Notification) string {
	if len(list) == 0 {
		return "Your inbox is empty."
	}
	var b strings.Builder
	b.WriteString("Recent notifications:\n")
	for _, n := range list {
		marker := "•"
		if !n.Read {
			marker = "🆕"
		}
		fmt.Fprintf(&b, "%s [%s] %s %s\n", marker, n.SentAt.Format("Jan 2 15:04"), n.Kind, n.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}

// toastText renders the in-chat toast for a pipeline event. Successful
// deliveries produce no toast.
func toastText(e app.Event) (string, bool) {
	switch e.Kind {
	case app.EventMilestoneReached:
		if e.Level == milestone.Level100 {
			return "🎉 You've achieved your daily hydration goal!", true
		}
		return fmt.Sprintf("🎯 %d%% hydration milestone reached!", int(e.Level)), true
	case app.EventDeliveryFailed:
		return "⚠️ " + capitalize(app.ErrDeliveryFailed.Error()), true
	default:
		return "", false
	}
}

func drinkKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{} // Inline keyboard
	buttons := make([]telebot.Btn, 0, len(quickDrinkAmounts))
	for _, amount := range quickDrinkAmounts {
		buttons = append(buttons, markup.Data(fmt.Sprintf("+%d ml", amount), fmt.Sprintf("drink_%d", amount)))
	}
	markup.Inline(markup.Row(buttons...))
	return markup
}

// parseDrinkCallback reads callback data of the form drink_<ml>. Telebot
// prefixes button data with \f, which TrimSpace removes.
func parseDrinkCallback(data string) (int, error) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, "drink_") {
		return 0, fmt.Errorf("unexpected callback data: %s", data)
	}
	amount, err := strconv.Atoi(strings.TrimPrefix(data, "drink_"))
	if err != nil {
		return 0, fmt.Errorf("invalid amount in callback %q: %w", data, err)
	}
	return amount, nil
}
