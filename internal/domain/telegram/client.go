// internal/domain/telegram/client.go
package telegram

import "gopkg.in/telebot.v3"

// Client pushes chat messages to a user outside of a command reply, such as
// milestone toasts. Implementations address private chats by Telegram user ID.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
