package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuildsMaskedLogger(t *testing.T) {
	log := New(Options{Level: "debug"})
	require.NotNil(t, log)
	require.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWithSentryFanOut(t *testing.T) {
	// Sentry is not initialized in tests; the handler must still build and
	// accept records without panicking.
	log := New(Options{Level: "error", SentryEnabled: true})
	require.NotNil(t, log)

	log.Error("sentry fan-out smoke", slog.String("component", "logger"))
}

func TestNewRespectsConfiguredLevel(t *testing.T) {
	log := New(Options{Level: "warn"})
	require.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, log.Enabled(context.Background(), slog.LevelWarn))
}
