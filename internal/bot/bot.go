package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/pricewatch/internal/services/alerts"
	"gopkg.in/telebot.v4"
)

// Bot contains the bot API instance and other information.
type Bot struct {
	bot     API
	log     *slog.Logger
	subs    Subscriptions
	timeout time.Duration // bounds store calls made from chat handlers
}

func NewBot(log *slog.Logger, token string, poller time.Duration, subs Subscriptions) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance := &Bot{bot: bot, log: log, subs: subs, timeout: poller}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/subscribe", b.subscribeHandler)
	b.bot.Handle("/unsubscribe", b.unsubscribeHandler)
}

// Notify sends the alert to every chat linked to its owner.
func (b *Bot) Notify(ctx context.Context, n alerts.Notification) error {
	const opn = "bot.Notify"

	chats, err := b.subs.ChatsForUser(ctx, n.Alert.UserID)
	if err != nil {
		return fmt.Errorf("%s: failed to get chats: %w", opn, err)
	}
	if len(chats) == 0 {
		b.log.DebugContext(ctx, "No chats linked to alert owner", "op", opn, "user", n.Alert.UserID)
		return nil
	}

	message := n.Message()
	var errs []error
	for _, chatID := range chats {
		if _, err = b.bot.Send(&telebot.Chat{ID: chatID}, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: chat %d: %w", opn, chatID, err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) storeContext() (context.Context, context.CancelFunc) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return context.WithTimeout(context.Background(), timeout)
}
