package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/scheduler")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.LockWait)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 24*time.Hour, cfg.LessonReportInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/scheduler")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BOOKING_LOCK_WAIT", "500ms")
	t.Setenv("BOOKING_NOTIFY_TIMEOUT", "1s")
	t.Setenv("LESSON_REPORT_INTERVAL", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.LockWait)
	assert.Equal(t, time.Second, cfg.NotifyTimeout)
	assert.Zero(t, cfg.LessonReportInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))

	_, err := Load()
	assert.Error(t, err)
}
