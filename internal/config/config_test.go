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

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "./data/shower.db", cfg.SQLitePath)
	assert.Equal(t, 45*time.Minute, cfg.AutoReleaseAfter)
	assert.Equal(t, 10*time.Second, cfg.MinShowerDuration)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.AlertTolerance)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryRetention)
	assert.Empty(t, cfg.APIKeys)
	assert.Equal(t, ":8080", cfg.ListenAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHOWER_HTTP_PORT", "9090")
	t.Setenv("SHOWER_STORE_DRIVER", "memory")
	t.Setenv("SHOWER_AUTO_RELEASE_AFTER", "30m")
	t.Setenv("SHOWER_API_KEYS", "alpha,beta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.AutoReleaseAfter)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.APIKeys)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("SHOWER_STORE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOWER_STORE_DRIVER")
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("SHOWER_STORE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOWER_POSTGRES_DSN")

	t.Setenv("SHOWER_POSTGRES_DSN", "postgres://localhost/shower")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("SHOWER_POLL_INTERVAL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOWER_POLL_INTERVAL")
}
