package worker

import (
	"feedhook/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PollerMetrics provides Prometheus metrics for the poller worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// poll-cycle metrics.
//
// Embedded metrics (from ConfigMetrics):
//   - poller_config_load_timestamp
//   - poller_config_validation_errors_total
//   - poller_config_fallbacks_total
//   - poller_config_fallback_active
//
// Poller-specific metrics:
//   - poller_cycle_runs_total: cycle runs by status (success/failure/skipped)
//   - poller_cycle_duration_seconds: cycle duration histogram
//   - poller_feeds_polled_total: feeds fetched across all cycles
//   - poller_entries_delivered_total: entries delivered to webhooks
//   - poller_fetch_errors_total: feed fetch failures
//   - poller_dispatch_errors_total: webhook dispatch failures
//   - poller_cycle_last_success_timestamp: Unix time of last successful cycle
type PollerMetrics struct {
	*config.ConfigMetrics

	CycleRunsTotal            *prometheus.CounterVec
	CycleDurationSeconds      prometheus.Histogram
	FeedsPolledTotal          prometheus.Counter
	EntriesDeliveredTotal     prometheus.Counter
	FetchErrorsTotal          prometheus.Counter
	DispatchErrorsTotal       prometheus.Counter
	CycleLastSuccessTimestamp prometheus.Gauge
}

// NewPollerMetrics creates a new PollerMetrics instance with all metrics
// initialized and registered with the default registry via promauto.
func NewPollerMetrics() *PollerMetrics {
	return &PollerMetrics{
		ConfigMetrics: config.NewConfigMetrics("poller"),

		CycleRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poller_cycle_runs_total",
			Help: "Total number of poll cycle runs by status (success/failure/skipped)",
		}, []string{"status"}),

		CycleDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "poller_cycle_duration_seconds",
			Help:    "Duration of a poll cycle in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 240},
		}),

		FeedsPolledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poller_feeds_polled_total",
			Help: "Total number of feeds fetched across all poll cycles",
		}),

		EntriesDeliveredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poller_entries_delivered_total",
			Help: "Total number of entries delivered to webhooks",
		}),

		FetchErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poller_fetch_errors_total",
			Help: "Total number of feed fetch failures",
		}),

		DispatchErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poller_dispatch_errors_total",
			Help: "Total number of webhook dispatch failures",
		}),

		CycleLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "poller_cycle_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll cycle",
		}),
	}
}

// MustRegister is a no-op kept for the usual metrics initialization pattern;
// promauto already registered everything in NewPollerMetrics.
func (m *PollerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordCycle increments the cycle counter for the given status
// ("success", "failure" or "skipped").
func (m *PollerMetrics) RecordCycle(status string) {
	m.CycleRunsTotal.WithLabelValues(status).Inc()
}

// RecordCycleDuration observes the duration of a poll cycle in seconds.
func (m *PollerMetrics) RecordCycleDuration(seconds float64) {
	m.CycleDurationSeconds.Observe(seconds)
}

// RecordCycleStats adds the per-cycle counts to their running totals.
func (m *PollerMetrics) RecordCycleStats(fetched, delivered, fetchErrors, dispatchErrors int) {
	m.FeedsPolledTotal.Add(float64(fetched))
	m.EntriesDeliveredTotal.Add(float64(delivered))
	m.FetchErrorsTotal.Add(float64(fetchErrors))
	m.DispatchErrorsTotal.Add(float64(dispatchErrors))
}

// RecordLastSuccess records the current time as the last successful cycle.
func (m *PollerMetrics) RecordLastSuccess() {
	m.CycleLastSuccessTimestamp.SetToCurrentTime()
}
