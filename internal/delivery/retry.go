package delivery

import (
	"context"
	"log/slog"
	"time"

	apperrors "device-relay-bot/internal/errors"
)

const (
	// MaxAttempts bounds how many times one send is tried.
	MaxAttempts = 5
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay = 800 * time.Millisecond
	// MaxDelay caps the backoff regardless of attempt count.
	MaxDelay = 10 * time.Second
)

// Retryer runs a send function under the retry policy: up to MaxAttempts
// tries, exponential backoff capped at MaxDelay, immediate abort on a
// permanent failure. The sleep only ever suspends the calling goroutine;
// no shared lock is held while waiting.
type Retryer struct {
	log   *slog.Logger
	sleep func(time.Duration)
}

func NewRetryer(log *slog.Logger) *Retryer {
	if log == nil {
		log = slog.Default()
	}

	return &Retryer{log: log, sleep: time.Sleep}
}

// Do invokes fn until it succeeds, fails permanently, or the attempt budget
// is spent. A permanent failure returns an E310 error without consuming
// remaining attempts; exhaustion returns an E311 error wrapping the last
// transient failure.
func (r *Retryer) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if Permanent(lastErr) {
			return apperrors.NewBlockedError(lastErr)
		}

		r.log.Warn("send attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", MaxAttempts),
			slog.Any("error", lastErr),
		)

		if attempt < MaxAttempts {
			r.sleep(backoffDelay(attempt))
		}
	}

	return apperrors.NewExhaustedError(lastErr)
}

// backoffDelay returns the pause after the given 1-based attempt:
// BaseDelay doubled per attempt, capped at MaxDelay.
func backoffDelay(attempt int) time.Duration {
	delay := BaseDelay << (attempt - 1)
	if delay > MaxDelay || delay <= 0 {
		return MaxDelay
	}

	return delay
}
