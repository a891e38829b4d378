// Package delivery sends rendered message descriptors to a Telegram
// conversation with bounded retries and permanent-failure detection.
package delivery

import (
	"context"
	"log/slog"

	apperrors "device-relay-bot/internal/errors"
	"device-relay-bot/internal/event"
	"device-relay-bot/pkg/metrics"
)

// Messenger performs one raw send of a message descriptor.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg event.Message) error
}

// Engine delivers descriptor batches. Messages go out sequentially so the
// caption stays on the first media item and ordering is user-visible.
type Engine struct {
	messenger Messenger
	retry     *Retryer
	log       *slog.Logger
}

func NewEngine(messenger Messenger, retry *Retryer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if retry == nil {
		retry = NewRetryer(log)
	}

	return &Engine{
		messenger: messenger,
		retry:     retry,
		log:       log,
	}
}

// Send delivers msgs to chatID one at a time, each under the retry policy.
// The first permanent or exhausted failure aborts the rest of the batch
// and is returned to the caller.
func (e *Engine) Send(ctx context.Context, chatID int64, msgs []event.Message) error {
	for idx, msg := range msgs {
		msg := msg
		err := e.retry.Do(ctx, func() error {
			metrics.RecordDeliveryAttempt(string(msg.Kind))
			return e.messenger.Send(ctx, chatID, msg)
		})
		if err != nil {
			// Anything that is not already classified (context cancellation,
			// programming errors) is reported as a generic delivery failure.
			if apperrors.CodeOf(err) == "" {
				err = apperrors.NewDeliveryError(err)
			}
			e.recordOutcome(err)
			e.log.Error("message delivery failed",
				slog.Int64("chat_id", chatID),
				slog.Int("index", idx),
				slog.String("kind", string(msg.Kind)),
				slog.Any("error", err),
			)
			return err
		}
		metrics.RecordDeliveryOutcome("ok")
	}

	return nil
}

func (e *Engine) recordOutcome(err error) {
	switch {
	case apperrors.IsPermanent(err):
		metrics.RecordDeliveryOutcome("permanent")
	case apperrors.IsExhausted(err):
		metrics.RecordDeliveryOutcome("exhausted")
	default:
		metrics.RecordDeliveryOutcome("transient")
	}
}
