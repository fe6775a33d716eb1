package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 25, cfg.DatabaseMaxConns)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5*time.Second, cfg.OutboxInterval)
	assert.Equal(t, 168*time.Hour, cfg.OutboxRetention)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OUTBOX_INTERVAL", "250ms")
	t.Setenv("DATABASE_MAX_CONNS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxInterval)
	assert.Equal(t, 50, cfg.DatabaseMaxConns)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("OUTBOX_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
