package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL    = "http://localhost:8000"
	DefaultSessionDB = "session.db"
)

// Config holds the client settings.
type Config struct {
	APIURL      string
	SessionDB   string
	Location    *time.Location
	HTTPTimeout time.Duration
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		APIURL:    getEnv("HAUSHALT_API_URL", DefaultAPIURL),
		SessionDB: getEnv("SESSION_DB", DefaultSessionDB),
	}

	loc, err := time.LoadLocation(getEnv("DISPLAY_TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_TZ: %w", err)
	}
	cfg.Location = loc

	if raw := os.Getenv("HAUSHALT_HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HAUSHALT_HTTP_TIMEOUT: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("invalid HAUSHALT_HTTP_TIMEOUT: %s is negative", raw)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
