package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	handler "feedhook/internal/handler/http"
	"feedhook/internal/handler/http/feed"
	"feedhook/internal/handler/http/requestid"
	"feedhook/internal/infra/adapter/persistence/kvstore"
	"feedhook/internal/infra/store"
	"feedhook/internal/observability/logging"
	"feedhook/internal/pkg/config"
	feedUC "feedhook/internal/usecase/feed"
)

// version is set at build time via -ldflags.
var version = "dev"

const maxRequestBodyBytes = 1 << 20 // 1 MiB

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	dbPath := config.LoadEnvString("STATE_DB_PATH", "data/feedhook.db")
	kv, err := store.OpenSQLite(dbPath)
	if err != nil {
		logger.Error("failed to open state database",
			slog.String("path", dbPath),
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
	svc := feedUC.NewService(feedRepo, lock)

	mux := http.NewServeMux()
	feed.Register(mux, svc)
	mux.Handle("GET /health", &handler.HealthHandler{Store: kv, Version: version})
	mux.Handle("GET /ready", &handler.ReadyHandler{Store: kv})
	mux.Handle("GET /live", &handler.LiveHandler{})
	mux.Handle("GET /metrics", handler.MetricsHandler())

	// Middleware chain, innermost first
	var h http.Handler = mux
	h = handler.Recover(logger)(h)
	h = handler.Logging(logger)(h)
	h = handler.LimitRequestBody(maxRequestBodyBytes)(h)
	h = handler.MetricsMiddleware(h)
	h = requestid.Middleware(h)

	runServer(logger, h)
}

// runServer starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully with a 5 second drain window.
func runServer(logger *slog.Logger, h http.Handler) {
	port := apiPort()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("api server stopped")
}

// apiPort retrieves the API server port from the API_PORT environment
// variable. Defaults to 8080 if not set or invalid.
func apiPort() int {
	portStr := os.Getenv("API_PORT")
	if portStr == "" {
		return 8080
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1024 || port > 65535 {
		slog.Warn("invalid API_PORT, using default",
			slog.String("value", portStr),
			slog.Int("default", 8080))
		return 8080
	}
	return port
}
