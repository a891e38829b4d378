package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"device-relay-bot/internal/bot"
	"device-relay-bot/internal/delivery"
	"device-relay-bot/internal/docstore"
	apperrors "device-relay-bot/internal/errors"
	"device-relay-bot/internal/event"
	"device-relay-bot/internal/health"
	"device-relay-bot/internal/idempotency"
	"device-relay-bot/internal/webhook"
	"device-relay-bot/pkg/config"
	"device-relay-bot/pkg/graceful"
	"device-relay-bot/pkg/logger"
	"device-relay-bot/pkg/netutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("sentry initialization failed", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	log.Info("starting relay bot",
		slog.String("env", cfg.AppEnv),
		slog.String("port", cfg.Server.Port),
		slog.Bool("force_ipv4", cfg.Network.ForceIPv4),
	)

	if cfg.Network.ForceIPv4 {
		log.Warn("IPv4-only egress enabled for outbound connections")
	}

	transport := netutil.Transport(cfg.Network.ForceIPv4)
	apiClient := netutil.Client(cfg.Network.ForceIPv4, 0)

	store, err := docstore.NewS3Store(docstore.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		ObjectKey: cfg.Storage.ObjectKey,
		UseSSL:    cfg.Storage.UseSSL,
	}, transport, log)
	if err != nil {
		log.Error("failed to create document store", slog.Any("error", err))
		os.Exit(1)
	}

	retry := delivery.NewRetryer(log)

	tgBot, err := bot.New(cfg.Bot, apiClient, store, retry, log)
	if err != nil {
		log.Error("failed to create telegram bot", slog.Any("error", err))
		os.Exit(1)
	}

	engine := delivery.NewEngine(delivery.NewTelegramMessenger(tgBot.Telebot()), retry, log)

	checker := health.NewChecker(log)
	checker.AddCheck("document_store", store)
	checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))

	var dedupe idempotency.Deduper
	if cfg.Redis.Addr != "" {
		redisDeduper := idempotency.NewRedisDeduper(idempotency.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			EventTTL: cfg.Redis.EventTTL,
		}, log)
		defer redisDeduper.Close()

		checker.AddCheck("redis", redisDeduper)
		dedupe = redisDeduper
	}

	handler := webhook.NewHandler(webhook.Options{
		Secret:    cfg.Webhook.Secret,
		MaxBody:   cfg.Webhook.MaxBodyBytes,
		Store:     store,
		Renderer:  event.NewRenderer(log),
		Deliverer: engine,
		Dedupe:    dedupe,
		Errors:    apperrors.NewHandler(log, cfg.Sentry.Enabled),
		Log:       log,
	})

	srv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.Routes(checker),
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	go tgBot.Start(ctx)
	go tgBot.KeepAlive(ctx, cfg.Bot.KeepAliveInterval)

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("http server exited with error", slog.Any("error", err))
	}

	log.Info("relay bot stopped")
}
