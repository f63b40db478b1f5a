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
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "TELEGRAM_TOKEN", "DATABASE_URL", "REFRESH_INTERVAL", "LIVE_VIEW_TTL", "OWNER_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "listify.db", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, time.Hour, cfg.LiveViewTTL)
	assert.Zero(t, cfg.OwnerID)
	assert.Error(t, cfg.ValidateBot())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_TOKEN=abc\nOWNER_ID=42\nREFRESH_INTERVAL=30s\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// Values already present in the environment win over the file.
	t.Setenv("REFRESH_INTERVAL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.OwnerID)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.NoError(t, cfg.ValidateBot())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"bad interval":  {"REFRESH_INTERVAL", "soon"},
		"tiny interval": {"REFRESH_INTERVAL", "10ms"},
		"bad env":       {"APP_ENV", "staging"},
		"bad owner":     {"OWNER_ID", "me"},
		"ttl too short": {"LIVE_VIEW_TTL", "1s"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
