package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DREAMCENSUS_DB", "DREAMCENSUS_CATALOG", "DREAMCENSUS_HTTP_ADDR",
		"DREAMCENSUS_LOG_LEVEL", "DREAMCENSUS_REDIS_URL",
		"DREAMCENSUS_CACHE_TTL", "DREAMCENSUS_SELECT_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DREAMCENSUS_DB", "/tmp/census.db")
	t.Setenv("DREAMCENSUS_CATALOG", "catalog.yaml")
	t.Setenv("DREAMCENSUS_HTTP_ADDR", ":9000")
	t.Setenv("DREAMCENSUS_LOG_LEVEL", "debug")
	t.Setenv("DREAMCENSUS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DREAMCENSUS_CACHE_TTL", "30s")
	t.Setenv("DREAMCENSUS_SELECT_LIMIT", "20")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/census.db", cfg.DBPath)
	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.SelectLimit)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, val string
	}{
		{"bad ttl", "DREAMCENSUS_CACHE_TTL", "soon"},
		{"bad limit", "DREAMCENSUS_SELECT_LIMIT", "ten"},
		{"zero limit", "DREAMCENSUS_SELECT_LIMIT", "0"},
		{"negative ttl", "DREAMCENSUS_CACHE_TTL", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DREAMCENSUS_HTTP_ADDR=:7777\n"), 0o600))

	// godotenv does not override variables that are set, so unset first.
	require.NoError(t, os.Unsetenv("DREAMCENSUS_HTTP_ADDR"))
	t.Cleanup(func() { os.Unsetenv("DREAMCENSUS_HTTP_ADDR") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.HTTPAddr)
}
