// Package config reads the site configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the site and its CLI read from the
// environment (and from .env, which main autoloads). Keys are spelled out
// in full so envconfig never falls back to bare names like PATH or URL.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabasePath is the SQLite file backing the certificates table.
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data/portfolio.db"`

	// Admin login. The defaults are for development only.
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	// TableJWTSecret signs and verifies table API keys.
	TableJWTSecret string `envconfig:"TABLE_JWT_SECRET"`
	// TableURL is the base URL of a remote deployment; the CLI talks to it
	// instead of the local database when set.
	TableURL string `envconfig:"TABLE_URL"`
	// TableAPIKey is sent by the CLI to the remote deployment.
	TableAPIKey string `envconfig:"TABLE_API_KEY"`
	// TableAllowOrigins lists origins allowed to call the REST API from a browser.
	TableAllowOrigins []string `envconfig:"TABLE_ALLOW_ORIGINS" default:"*"`

	// SeedPath points at a YAML file of certificates inserted on serve
	// when the table is empty.
	SeedPath string `envconfig:"SEED_PATH"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.TableURL != "" && c.TableAPIKey == "" {
		return errors.New("TABLE_URL is set but TABLE_API_KEY is not configured")
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}
