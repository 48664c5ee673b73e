// Package logging provides structured logging helpers built on log/slog.
// Both entrypoints construct their logger here so worker and API logs share
// the same shape and level handling.
package logging

import (
	"context"
	"log/slog"
	"os"

	"feedhook/internal/handler/http/requestid"
)

// NewLogger creates a structured logger with JSON output, or
// human-readable text output when LOG_FORMAT=text is set.
// LOG_LEVEL=debug enables debug logging; the default level is info.
func NewLogger() *slog.Logger {
	if os.Getenv("LOG_FORMAT") == "text" {
		return NewTextLogger()
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

// NewTextLogger creates a structured logger with human-readable text output.
// This is useful for local development and debugging.
func NewTextLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

func levelFromEnv() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// WithRequestID returns a logger carrying the request ID from the context,
// or the logger unchanged when the context has none.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
