package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "SKIN_STORE", "SKIN_CACHE_MAX_AGE", "GW2_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "database", cfg.SkinStore)
	assert.Equal(t, 30*24*time.Hour, cfg.SkinCacheMaxAge)
	assert.Equal(t, 5.0, cfg.GW2RateLimit)
	assert.True(t, cfg.SyncOnStartup)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SKIN_STORE", "Redis")
	t.Setenv("SKIN_CACHE_MAX_AGE", "7")
	t.Setenv("SYNC_ON_STARTUP", "false")
	t.Setenv("GW2_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.SkinStore)
	assert.Equal(t, 7*24*time.Hour, cfg.SkinCacheMaxAge)
	assert.False(t, cfg.SyncOnStartup)
	assert.Equal(t, 10, cfg.GW2Burst, "invalid ints fall back to the default")
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90m")
	assert.Equal(t, 90*time.Minute, getEnvDuration("TEST_DURATION", time.Hour))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION", time.Hour))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GW2STYLE_DOTENV_TEST=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GW2STYLE_DOTENV_TEST") })

	LoadDotEnv(path)

	assert.Equal(t, "from-file", os.Getenv("GW2STYLE_DOTENV_TEST"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NotPanics(t, func() {
		LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}
