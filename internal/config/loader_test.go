package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, cfg.Limiter.MaxRequests)
	require.Equal(t, 15*time.Second, cfg.Limiter.Window)
	require.Equal(t, 300*time.Millisecond, cfg.Suggest.Debounce)
	require.Equal(t, 2, cfg.Suggest.MinQueryLength)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
limiter:
  max_requests: 5
  window: 1m
suggest:
  debounce: 150ms
  min_query_length: 3
store:
  path: ":memory:"
server:
  port: 9999
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	SetConfigFile(path)
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 5, cfg.Limiter.MaxRequests)
	require.Equal(t, time.Minute, cfg.Limiter.Window)
	require.Equal(t, 150*time.Millisecond, cfg.Suggest.Debounce)
	require.Equal(t, 3, cfg.Suggest.MinQueryLength)
	require.Equal(t, ":memory:", cfg.Store.Path)
	require.Equal(t, 9999, cfg.Server.Port)

	// Untouched sections keep their defaults.
	require.Equal(t, 10, cfg.Suggest.Limit)
}

func TestLoadEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("QUERYGATE_LIMITER_MAX_REQUESTS", "7")
	t.Setenv("QUERYGATE_LOGGING_LEVEL", "debug")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Limiter.MaxRequests)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidLimiter(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("QUERYGATE_LIMITER_MAX_REQUESTS", "0")

	_, err := Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "limiter.max_requests")
}

func TestLoadCachesResult(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load(context.Background())
	require.NoError(t, err)
	second, err := Load(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
}
