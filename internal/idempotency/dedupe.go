// Package idempotency deduplicates webhook events so an upstream sender
// re-posting an already accepted event does not produce duplicate Telegram
// messages. Deduplication is optional: without a configured redis address
// the gate processes every request.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"device-relay-bot/internal/event"
)

const keyPrefix = "relay:event:"

// Deduper answers whether an event key has been processed before.
type Deduper interface {
	// Seen atomically records key and reports whether it was already present.
	Seen(ctx context.Context, key string) (bool, error)
}

// RedisDeduper implements Deduper with a SET NX per event key.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// Options configures the redis connection and the dedupe window.
type Options struct {
	Addr     string
	Password string
	DB       int
	EventTTL time.Duration
}

func NewRedisDeduper(opts Options, log *slog.Logger) *RedisDeduper {
	if log == nil {
		log = slog.Default()
	}

	ttl := opts.EventTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &RedisDeduper{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Seen implements Deduper. The first caller for a key claims it; everyone
// after (until the TTL expires) observes it as already seen.
func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	claimed, err := d.client.SetNX(ctx, keyPrefix+key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe check: %w", err)
	}

	return !claimed, nil
}

// HealthCheck pings the redis backend.
func (d *RedisDeduper) HealthCheck(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the redis connection.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}

// EventKey derives the dedupe key for an event aimed at a conversation.
// The same device event re-posted for the same chat hashes identically.
func EventKey(chatID int64, ev *event.Event) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%s|%s", chatID, ev.Type, ev.Fingerprint, ev.CollectedAt))
	return hex.EncodeToString(sum[:])
}
