package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Config keeps runtime settings shared by the bot and the terminal UI.
type Config struct {
	Env             string
	LogLevel        string
	TelegramToken   string
	DatabaseURL     string
	RefreshInterval time.Duration
	LiveViewTTL     time.Duration
	OwnerID         int64
}

// Load reads configuration from environment variables with sane defaults.
// Variables from an optional .env file (ENV_FILE, default ".env") fill in whatever the
// environment leaves unset.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Env:           strings.TrimSpace(os.Getenv("APP_ENV")),
		LogLevel:      strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	if cfg.Env == "" {
		cfg.Env = EnvDev
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "listify.db"
	}

	var err error
	if cfg.RefreshInterval, err = parseDuration("REFRESH_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.LiveViewTTL, err = parseDuration("LIVE_VIEW_TTL", time.Hour); err != nil {
		return cfg, err
	}
	if raw := strings.TrimSpace(os.Getenv("OWNER_ID")); raw != "" {
		cfg.OwnerID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse OWNER_ID: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings every binary needs.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.Required, validation.In(EnvDev, EnvProd)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.RefreshInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.LiveViewTTL, validation.Required, validation.Min(c.RefreshInterval)),
	)
}

// ValidateBot additionally requires the Telegram credentials.
func (c Config) ValidateBot() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TelegramToken, validation.Required.Error("TELEGRAM_TOKEN is required")),
	)
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}
