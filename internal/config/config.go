// Package config holds runtime settings for the dreamcensus binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	// DBPath is the sqlite database file. Empty means the XDG default.
	DBPath string

	// CatalogPath is a YAML catalog file. Empty means the embedded catalog.
	CatalogPath string

	// HTTPAddr is the listen address for `dreamcensus serve`.
	HTTPAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// RedisURL enables the redis progress cache when set.
	RedisURL string

	// CacheTTL bounds how long cached progress may be served.
	CacheTTL time.Duration

	// SelectLimit is the default number of questions per selection.
	SelectLimit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    "localhost:8080",
		LogLevel:    "info",
		CacheTTL:    5 * time.Minute,
		SelectLimit: 10,
	}
}

// FromEnv builds a Config from DREAMCENSUS_* environment variables,
// falling back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if p := os.Getenv("DREAMCENSUS_DB"); p != "" {
		cfg.DBPath = p
	}
	if p := os.Getenv("DREAMCENSUS_CATALOG"); p != "" {
		cfg.CatalogPath = p
	}
	if a := os.Getenv("DREAMCENSUS_HTTP_ADDR"); a != "" {
		cfg.HTTPAddr = a
	}
	if l := os.Getenv("DREAMCENSUS_LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}
	if u := os.Getenv("DREAMCENSUS_REDIS_URL"); u != "" {
		cfg.RedisURL = u
	}
	if t := os.Getenv("DREAMCENSUS_CACHE_TTL"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return Config{}, fmt.Errorf("DREAMCENSUS_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if n := os.Getenv("DREAMCENSUS_SELECT_LIMIT"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return Config{}, fmt.Errorf("DREAMCENSUS_SELECT_LIMIT: %w", err)
		}
		cfg.SelectLimit = v
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.SelectLimit <= 0 {
		return fmt.Errorf("select limit must be positive, got %d", c.SelectLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
