// Package config loads process settings from REMINDERS_* environment
// variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"procdexeh/reminders/internal/db"
)

type Config struct {
	DBPath        string `env:"DB"`
	Access        string `env:"ACCESS" envDefault:"full"`
	DefaultSource string `env:"DEFAULT_SOURCE" envDefault:"Local"`
	DefaultList   string `env:"DEFAULT_LIST" envDefault:"Reminders"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
}

const envPrefix = "REMINDERS_"

// Load reads the environment, fills in the database path under the home
// directory when unset, and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: envPrefix})
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".reminders", "reminders.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := db.ParseAccess(c.Access); err != nil {
		return fmt.Errorf("%sACCESS: %w", envPrefix, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT: unknown format %q (want text or json)", envPrefix, c.LogFormat)
	}
	return nil
}

// StoreOptions maps the config onto db.Open options. Validate must have
// passed.
func (c *Config) StoreOptions() db.Options {
	access, _ := db.ParseAccess(c.Access)
	return db.Options{
		Access:        access,
		DefaultSource: c.DefaultSource,
		DefaultList:   c.DefaultList,
	}
}

// Logger builds the process logger writing to w. Protocol traffic owns
// stdout, so callers pass stderr.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}
