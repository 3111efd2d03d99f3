package bot

import (
	"context"
	"time"

	"gopkg.in/telebot.v4"
)

type API interface {
	// Handle lets you set the handler for some command name or one of the supported endpoints. It also applies middleware if such passed to the function.
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
	// Start brings bot into motion by consuming incoming updates (see Bot.Updates channel).
	Start()
	// Stop gracefully shuts the poller down.
	Stop()
	// Send delivers a message to the recipient.
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Subscriptions links chats to the users whose alerts they receive.
type Subscriptions interface {
	// RedeemLinkCode consumes a one-time code and links chatID to the code's user.
	RedeemLinkCode(ctx context.Context, code string, chatID int64, now time.Time) (string, error)
	UnsubscribeChat(ctx context.Context, chatID int64) error
	ChatsForUser(ctx context.Context, userID string) ([]int64, error)
}
