package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/staff-portal/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "staff-portal", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, config.SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "staff_session", cfg.Session.CookieName)
	assert.Zero(t, cfg.Session.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Session.PendingTTL)
	assert.NotEmpty(t, cfg.Session.TokenSecret)
	assert.Contains(t, cfg.Database.URL, "postgres://portal:@localhost:5432/staff_portal")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_STORE", "BOLT")
	t.Setenv("SYNC_INTERVAL_SECONDS", "45")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, config.SessionStoreBolt, cfg.Session.Store)
	assert.Equal(t, 45*time.Second, cfg.Buffer.SyncInterval)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Migrations.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME: hq-portal\nSESSION_COOKIE: hq\n"), 0o600))
	t.Setenv("PORTAL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "hq-portal", cfg.AppName)
	assert.Equal(t, "hq", cfg.Session.CookieName)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_STORE", "memcached")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")

	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Session.TokenSecret)
}

func TestLoad_TypedValuesFallBackOnGarbage(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_RETRY_ATTEMPTS", "many")
	t.Setenv("SESSION_COOKIE_SECURE", "1")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "1m30s")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Buffer.MaxRetry)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 5*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.Context.ShutdownTimeout)
	assert.Equal(t, 2, cfg.Redis.DB)
}
