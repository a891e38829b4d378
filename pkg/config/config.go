package config

import "time"

// Config holds runtime configuration for the relay bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Log     Log     `mapstructure:"log"`
	Server  Server  `mapstructure:"server"`
	Bot     Bot     `mapstructure:"bot"`
	Webhook Webhook `mapstructure:"webhook"`
	Storage Storage `mapstructure:"storage"`
	Redis   Redis   `mapstructure:"redis"`
	Sentry  Sentry  `mapstructure:"sentry"`
	Network Network `mapstructure:"network"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Server struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Bot struct {
	Token             string        `mapstructure:"token" validate:"required"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
}

type Webhook struct {
	Secret       string `mapstructure:"secret" validate:"required"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// Storage identifies the remote object holding the shared user document.
type Storage struct {
	Endpoint  string `mapstructure:"endpoint" validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
	ObjectKey string `mapstructure:"object_key" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Redis enables webhook event deduplication when Addr is set.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	EventTTL time.Duration `mapstructure:"event_ttl"`
}

type Sentry struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Network carries the egress toggle for hosts without IPv6 connectivity.
type Network struct {
	ForceIPv4 bool `mapstructure:"force_ipv4"`
}
