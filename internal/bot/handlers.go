package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/repository"
	"gopkg.in/telebot.v4"
)

const (
	greetingMessage    = "Hello! Request a link code in the app, then send /subscribe <code> to receive your price alerts in this chat."
	subscribeUsage     = "Usage: /subscribe <code>"
	invalidCodeMessage = "This code is unknown or expired. Request a new one in the app."
	subscribedMessage  = "Subscribed. Your price alerts will be sent here."
	unsubscribeMessage = "Unsubscribed. This chat will no longer receive price alerts."
	failureMessage     = "Something went wrong, please try again later."
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	if err := ctx.Send(greetingMessage); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// subscribeHandler redeems the link code given as the only argument.
func (b *Bot) subscribeHandler(ctx telebot.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return b.reply(ctx, subscribeUsage)
	}

	storeCtx, cancel := b.storeContext()
	defer cancel()

	userID, err := b.subs.RedeemLinkCode(storeCtx, args[0], ctx.Chat().ID, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		b.log.Warn("Rejected link code", "chat", ctx.Chat().ID)
		return b.reply(ctx, invalidCodeMessage)
	}
	if err != nil {
		b.log.Error("Failed to subscribe chat", "chat", ctx.Chat().ID, "error", err)
		return b.reply(ctx, failureMessage)
	}
	b.log.Info("Chat subscribed", "chat", ctx.Chat().ID, "user", userID)

	return b.reply(ctx, subscribedMessage)
}

// unsubscribeHandler removes every link of the chat.
func (b *Bot) unsubscribeHandler(ctx telebot.Context) error {
	storeCtx, cancel := b.storeContext()
	defer cancel()

	if err := b.subs.UnsubscribeChat(storeCtx, ctx.Chat().ID); err != nil {
		b.log.Error("Failed to unsubscribe chat", "chat", ctx.Chat().ID, "error", err)
		return b.reply(ctx, failureMessage)
	}
	b.log.Info("Chat unsubscribed", "chat", ctx.Chat().ID)

	return b.reply(ctx, unsubscribeMessage)
}

func (b *Bot) reply(ctx telebot.Context, text string) error {
	if err := ctx.Send(text); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}
