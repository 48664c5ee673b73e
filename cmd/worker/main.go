package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"feedhook/internal/handler/http/respond"
	"feedhook/internal/infra/adapter/persistence/kvstore"
	"feedhook/internal/infra/notifier"
	"feedhook/internal/infra/scraper"
	"feedhook/internal/infra/store"
	workerPkg "feedhook/internal/infra/worker"
	"feedhook/internal/observability/logging"
	"feedhook/internal/usecase/poll"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load poller configuration (fail-open strategy)
	metrics := workerPkg.NewPollerMetrics()
	metrics.MustRegister()
	cfg, err := workerPkg.LoadConfigFromEnv(logger, metrics)
	if err != nil {
		logger.Error("failed to load poller configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("poller configuration loaded",
		slog.String("schedule", cfg.CronSpec()),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("cycle_timeout", cfg.CycleTimeout),
		slog.String("state_db", cfg.StateDBPath),
		slog.Bool("simple_mode", cfg.SimpleMode))

	kv, err := store.OpenSQLite(cfg.StateDBPath)
	if err != nil {
		logger.Error("failed to open state database",
			slog.String("path", cfg.StateDBPath),
			slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("failed to close state database", slog.Any("error", err))
		}
	}()

	feedRepo := kvstore.NewFeedRepo(kv)
	lock := kvstore.NewLock(kv)

	// The processing flag survives restarts. A crash mid-cycle would leave
	// it set and block every future cycle, so clear it once at startup.
	if err := lock.Release(ctx); err != nil {
		logger.Error("failed to clear stale processing lock", slog.Any("error", err))
		os.Exit(1)
	}

	seedFeeds(ctx, logger, cfg, feedRepo)

	feedFetcher := scraper.NewRSSFetcher(createHTTPClient())
	dispatcher := notifier.NewDispatcher(notifier.Config{SimpleMode: cfg.SimpleMode})
	svc := poll.NewService(feedRepo, lock, feedFetcher, dispatcher)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, cfg.MetricsPort)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(logger, &svc, cfg, metrics, healthServer)
}

// seedFeeds imports the optional seed file into an empty store. A store that
// already holds feeds is never touched, so the seed file cannot clobber a
// list edited through the admin API.
func seedFeeds(ctx context.Context, logger *slog.Logger, cfg *workerPkg.PollerConfig, repo *kvstore.FeedRepo) {
	if cfg.SeedFile == "" {
		return
	}

	existing, err := repo.List(ctx)
	if err != nil {
		logger.Error("failed to read feed list for seeding", slog.Any("error", err))
		os.Exit(1)
	}
	if len(existing) > 0 {
		logger.Debug("feed list already populated, skipping seed file",
			slog.Int("feeds", len(existing)))
		return
	}

	feeds, err := workerPkg.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		logger.Error("failed to load seed file",
			slog.String("path", cfg.SeedFile),
			slog.Any("error", err))
		os.Exit(1)
	}
	if err := repo.SaveAll(ctx, feeds); err != nil {
		logger.Error("failed to save seeded feeds", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("feed list seeded",
		slog.String("path", cfg.SeedFile),
		slog.Int("feeds", len(feeds)))
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// startCronWorker starts the cron scheduler and runs the poll cycle periodically.
func startCronWorker(logger *slog.Logger, svc *poll.Service, cfg *workerPkg.PollerConfig, metrics *workerPkg.PollerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSpec(), func() {
		runPollCycle(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSpec()), slog.String("timezone", cfg.Timezone))
	select {}
}

// runPollCycle executes a single poll cycle with timeout and error handling.
func runPollCycle(logger *slog.Logger, svc *poll.Service, cfg *workerPkg.PollerConfig, metrics *workerPkg.PollerMetrics) {
	startTime := time.Now()
	logger.Info("poll cycle started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CycleTimeout)
	defer cancel()

	stats, err := svc.RunCycle(ctx)
	if err != nil {
		// Webhook URLs carry secrets; mask before logging
		logger.Error("poll cycle failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordCycle("failure")
		metrics.RecordCycleDuration(time.Since(startTime).Seconds())
		return
	}
	if stats.Skipped {
		metrics.RecordCycle("skipped")
		return
	}

	metrics.RecordCycle("success")
	metrics.RecordCycleDuration(time.Since(startTime).Seconds())
	metrics.RecordCycleStats(stats.Fetched, stats.Delivered, stats.FetchErrors, stats.DispatchErrors)
	metrics.RecordLastSuccess()
}
