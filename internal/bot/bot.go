// Package bot owns the Telegram session: the /start activation command, the
// catch-all for unsupported messages, and the keep-alive ping.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	telebot "gopkg.in/telebot.v3"

	"device-relay-bot/internal/delivery"
	"device-relay-bot/internal/docstore"
	"device-relay-bot/internal/domain"
	"device-relay-bot/pkg/config"
	"device-relay-bot/pkg/metrics"
)

// Bot wraps the telebot session with the collaborators the command
// handlers need.
type Bot struct {
	tb    *telebot.Bot
	store docstore.Store
	retry *delivery.Retryer
	log   *slog.Logger
}

// New builds the Telegram bot with long polling. client carries the
// (possibly IPv4-pinned) outbound transport.
func New(cfg config.Bot, client *http.Client, store docstore.Store, retry *delivery.Retryer, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}
	if retry == nil {
		retry = delivery.NewRetryer(log)
	}

	settings := telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollTimeout},
		Client: client,
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		tb:    tb,
		store: store,
		retry: retry,
		log:   log,
	}
	b.registerHandlers()

	return b, nil
}

// Telebot exposes the underlying session for the delivery messenger and
// health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.tb
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle(telebot.OnText, b.handleOther)
}

// Start runs the poller until ctx is canceled.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.tb.Stop()
	}()

	b.log.Info("telegram bot polling started", slog.String("username", b.tb.Me.Username))
	b.tb.Start()
}

// handleStart processes the activation command `/start [activationId]`.
func (b *Bot) handleStart(c telebot.Context) error {
	ctx := context.Background()

	chat := c.Chat()
	if chat == nil {
		return nil
	}
	chatID := chat.ID

	var username string
	if sender := c.Sender(); sender != nil {
		username = sender.Username
	}

	var activationID string
	if msg := c.Message(); msg != nil {
		activationID = msg.Payload
	}

	doc, err := b.store.Read(ctx)
	if err != nil {
		b.log.Error("cannot read document for activation", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return b.send(ctx, c, replyReadFailed)
	}

	result := resolveStart(doc, chatID, username, activationID)

	if result.User != nil {
		if err := b.store.Write(ctx, doc); err != nil {
			b.log.Error("cannot persist activation",
				slog.Int64("chat_id", chatID),
				slog.String("user_id", result.User.UserID),
				slog.Any("error", err),
			)
			return b.send(ctx, c, replyWriteFailed)
		}

		metrics.RecordBindingTransition(domain.StatusActive)
		b.log.Info("user activated notifications",
			slog.String("user_id", result.User.UserID),
			slog.String("nickname", result.User.Nickname),
			slog.Int64("chat_id", chatID),
		)
	}

	return b.send(ctx, c, result.Reply)
}

// handleOther logs and ignores anything that is not a known command.
func (b *Bot) handleOther(c telebot.Context) error {
	if chat := c.Chat(); chat != nil {
		b.log.Info("ignoring unsupported message", slog.Int64("chat_id", chat.ID))
	}
	return nil
}

// send replies under the retry policy so a flaky Bot API call does not
// drop an activation response.
func (b *Bot) send(ctx context.Context, c telebot.Context, text string) error {
	err := b.retry.Do(ctx, func() error {
		return c.Send(text)
	})
	if err != nil {
		b.log.Error("failed to send bot reply", slog.Any("error", err))
	}

	return nil
}

// KeepAlive pings the Bot API until ctx is canceled: once right away, then
// on every interval tick. Failures are logged and never escalated.
func (b *Bot) KeepAlive(ctx context.Context, interval time.Duration) {
	keepAlive(ctx, interval, func() error {
		_, err := b.tb.Raw("getMe", nil)
		return err
	}, b.log)
}

func keepAlive(ctx context.Context, interval time.Duration, ping func() error, log *slog.Logger) {
	if interval <= 0 {
		interval = 300 * time.Second
	}

	doPing := func() {
		if err := ping(); err != nil {
			log.Warn("telegram keep-alive ping failed", slog.Any("error", err))
			return
		}
		log.Debug("telegram keep-alive ping ok")
	}

	// A dead session should surface at startup, not one interval later.
	doPing()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			doPing()
		}
	}
}
