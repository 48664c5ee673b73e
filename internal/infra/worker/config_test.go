package worker

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.IntervalMinutes)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 4*time.Minute, cfg.CycleTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.False(t, cfg.SimpleMode)
	assert.Equal(t, "data/feedhook.db", cfg.StateDBPath)
	assert.Empty(t, cfg.Schedule)
	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestCronSpec(t *testing.T) {
	t.Run("interval based by default", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, "@every 5m", cfg.CronSpec())

		cfg.IntervalMinutes = 30
		assert.Equal(t, "@every 30m", cfg.CronSpec())
	})

	t.Run("explicit schedule wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Schedule = "*/10 * * * *"
		assert.Equal(t, "*/10 * * * *", cfg.CronSpec())
	})
}

func TestPollerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PollerConfig)
		wantErr bool
	}{
		{"valid defaults", func(c *PollerConfig) {}, false},
		{"valid cron override", func(c *PollerConfig) { c.Schedule = "30 5 * * *" }, false},
		{"invalid cron override", func(c *PollerConfig) { c.Schedule = "not a cron" }, true},
		{"invalid timezone", func(c *PollerConfig) { c.Timezone = "Mars/Olympus" }, true},
		{"interval too small", func(c *PollerConfig) { c.IntervalMinutes = 0 }, true},
		{"interval too large", func(c *PollerConfig) { c.IntervalMinutes = 2000 }, true},
		{"zero cycle timeout", func(c *PollerConfig) { c.CycleTimeout = 0 }, true},
		{"privileged health port", func(c *PollerConfig) { c.HealthPort = 80 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	logger := slog.Default()

	t.Run("loads valid values from environment", func(t *testing.T) {
		t.Setenv("POLL_INTERVAL_MINUTES", "15")
		t.Setenv("WORKER_TIMEZONE", "Asia/Tokyo")
		t.Setenv("CYCLE_TIMEOUT", "10m")
		t.Setenv("SIMPLE_MODE", "true")
		t.Setenv("STATE_DB_PATH", "/tmp/state.db")
		t.Setenv("FEEDS_SEED_FILE", "/etc/feedhook/feeds.yaml")

		cfg, err := LoadConfigFromEnv(logger, testMetrics())

		assert.NoError(t, err)
		assert.Equal(t, 15, cfg.IntervalMinutes)
		assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
		assert.Equal(t, 10*time.Minute, cfg.CycleTimeout)
		assert.True(t, cfg.SimpleMode)
		assert.Equal(t, "/tmp/state.db", cfg.StateDBPath)
		assert.Equal(t, "/etc/feedhook/feeds.yaml", cfg.SeedFile)
	})

	t.Run("falls back to defaults on invalid values", func(t *testing.T) {
		t.Setenv("POLL_INTERVAL_MINUTES", "not-a-number")
		t.Setenv("WORKER_TIMEZONE", "Nowhere/Invalid")

		cfg, err := LoadConfigFromEnv(logger, testMetrics())

		assert.NoError(t, err, "loader is fail-open and never errors")
		assert.Equal(t, 5, cfg.IntervalMinutes, "invalid interval falls back to default")
		assert.Equal(t, "UTC", cfg.Timezone, "invalid timezone falls back to default")
	})

	t.Run("uses cron override when provided", func(t *testing.T) {
		t.Setenv("POLL_SCHEDULE", "*/10 * * * *")

		cfg, err := LoadConfigFromEnv(logger, testMetrics())

		assert.NoError(t, err)
		assert.Equal(t, "*/10 * * * *", cfg.CronSpec())
	})
}
