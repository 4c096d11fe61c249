// Package service holds the side channels the HTTP handlers call out to:
// Telegram notifications, RU-first CRM forwarding, the support bot and the
// domain event publisher.
package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
)

// Sender is the subset of *bot.Bot the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier posts HTML-formatted messages to the team's Telegram chat.
type Notifier struct {
	sender Sender
	chatID int64
	log    *zap.Logger
}

// NewNotifier builds a Telegram-backed notifier. When the bot token or chat
// id is missing it returns a notifier whose Notify is a no-op.
func NewNotifier(cfg config.TelegramConfig, client *http.Client, pollTimeout time.Duration, log *zap.Logger) (*Notifier, error) {
	if !cfg.Configured() {
		return NewNotifierWithSender(nil, 0, log), nil
	}
	opts := []bot.Option{bot.WithSkipGetMe()}
	if client != nil {
		opts = append(opts, bot.WithHTTPClient(pollTimeout, client))
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return NewNotifierWithSender(b, cfg.ChatID, log), nil
}

// NewNotifierWithSender wires an explicit sender; a nil sender disables
// delivery.
func NewNotifierWithSender(s Sender, chatID int64, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{sender: s, chatID: chatID, log: log}
}

// Enabled reports whether messages will actually be delivered.
func (n *Notifier) Enabled() bool { return n != nil && n.sender != nil }

// Send delivers text and reports the outcome. Use it only where the message
// is the primary action of the request.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return fmt.Errorf("telegram: %w", apperr.ErrConfigMissing)
	}
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             n.chatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		return apperr.Unreachable("telegram", "sendMessage", err)
	}
	return nil
}

// Notify is the best-effort variant of Send: an unconfigured channel is
// silently skipped and send failures are logged, never returned.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if !n.Enabled() {
		return
	}
	if err := n.Send(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
		n.log.Warn("telegram notification failed", zap.Error(err))
	}
}

// EscapeHTML escapes user-provided text for Telegram's HTML parse mode.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
