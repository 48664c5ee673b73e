package worker

import (
	"fmt"
	"log/slog"
	"time"

	"feedhook/internal/pkg/config"
)

// PollerConfig holds the configuration for the poller worker.
// All fields have safe defaults; values loaded from the environment that
// fail validation fall back to those defaults instead of aborting startup.
type PollerConfig struct {
	// Schedule is an optional cron expression overriding IntervalMinutes.
	// When empty the poller runs every IntervalMinutes minutes.
	Schedule string

	// IntervalMinutes is the poll interval in minutes.
	// Range: 1-1440. Default: 5.
	IntervalMinutes int

	// Timezone is the IANA timezone name used for cron scheduling.
	// Default: "UTC".
	Timezone string

	// CycleTimeout is the maximum duration for a single poll cycle.
	// A cycle that overruns is cancelled; the processing lock is still
	// released. Default: 4 minutes.
	CycleTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int

	// MetricsPort is the port for the Prometheus metrics server.
	// Range: 1024-65535. Default: 9090.
	MetricsPort int

	// SimpleMode sends plain-text webhook messages instead of rich embeds.
	// Default: false.
	SimpleMode bool

	// StateDBPath is the path of the SQLite state database.
	// Default: "data/feedhook.db".
	StateDBPath string

	// SeedFile is an optional YAML file with an initial feed list,
	// imported once when the store holds no feeds yet. Default: unset.
	SeedFile string
}

// DefaultConfig returns a PollerConfig with production-ready defaults:
// poll every 5 minutes in UTC, cycle capped at 4 minutes so one cycle
// always ends before the next is due.
func DefaultConfig() PollerConfig {
	return PollerConfig{
		IntervalMinutes: 5,
		Timezone:        "UTC",
		CycleTimeout:    4 * time.Minute,
		HealthPort:      9091,
		MetricsPort:     9090,
		StateDBPath:     "data/feedhook.db",
	}
}

// CronSpec returns the schedule expression to hand to the cron runner:
// the explicit Schedule when set, otherwise an @every spec built from
// IntervalMinutes.
func (c *PollerConfig) CronSpec() string {
	if c.Schedule != "" {
		return c.Schedule
	}
	return fmt.Sprintf("@every %dm", c.IntervalMinutes)
}

// Validate checks the configuration values. All failures are collected and
// returned together.
func (c *PollerConfig) Validate() error {
	var errs []error

	if c.Schedule != "" {
		if err := config.ValidateCronSchedule(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("schedule: %w", err))
		}
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.IntervalMinutes, 1, 1440); err != nil {
		errs = append(errs, fmt.Errorf("poll interval: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.CycleTimeout); err != nil {
		errs = append(errs, fmt.Errorf("cycle timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	return nil
}

// LoadConfigFromEnv loads the poller configuration from environment
// variables with validation and automatic fallback to defaults.
//
// The loader is fail-open: an invalid value is replaced by its default,
// the fallback is logged and counted in metrics, and the function never
// returns an error. The worker keeps running on its defaults rather
// than crash-looping on a typo in the environment.
//
// Environment variables:
//   - POLL_SCHEDULE: cron expression overriding the interval (default: unset)
//   - POLL_INTERVAL_MINUTES: integer 1-1440 (default: 5)
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - CYCLE_TIMEOUT: duration string, e.g. "4m" (default: 4 minutes)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - METRICS_PORT: integer 1024-65535 (default: 9090)
//   - SIMPLE_MODE: boolean (default: false)
//   - STATE_DB_PATH: file path (default: "data/feedhook.db")
//   - FEEDS_SEED_FILE: file path (default: unset)
func LoadConfigFromEnv(logger *slog.Logger, metrics *PollerMetrics) (*PollerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("POLL_SCHEDULE", cfg.Schedule, func(s string) error {
		if s == "" {
			return nil
		}
		return config.ValidateCronSchedule(s)
	})
	cfg.Schedule = result.Value.(string)
	warn("poll_schedule", result)

	result = config.LoadEnvInt("POLL_INTERVAL_MINUTES", cfg.IntervalMinutes, func(v int) error {
		return config.ValidateIntRange(v, 1, 1440)
	})
	cfg.IntervalMinutes = result.Value.(int)
	warn("poll_interval_minutes", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	warn("timezone", result)

	result = config.LoadEnvDuration("CYCLE_TIMEOUT", cfg.CycleTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 2*time.Hour)
	})
	cfg.CycleTimeout = result.Value.(time.Duration)
	warn("cycle_timeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	warn("health_port", result)

	result = config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	warn("metrics_port", result)

	result = config.LoadEnvBool("SIMPLE_MODE", cfg.SimpleMode)
	cfg.SimpleMode = result.Value.(bool)
	warn("simple_mode", result)

	cfg.StateDBPath = config.LoadEnvString("STATE_DB_PATH", cfg.StateDBPath)
	cfg.SeedFile = config.LoadEnvString("FEEDS_SEED_FILE", cfg.SeedFile)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return a valid config (fail-open strategy)
	return &cfg, nil
}
