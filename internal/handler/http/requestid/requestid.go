// Package requestid correlates log lines across a request by carrying a
// per-request ID in the context and the X-Request-ID header.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey keeps the context key private to this package.
type contextKey string

const (
	requestIDKey contextKey = "request_id"

	// RequestIDHeader is read from incoming requests and echoed on
	// responses so clients can quote the ID in bug reports.
	RequestIDHeader = "X-Request-ID"
)

// FromContext returns the request ID stored in ctx, or "" when absent.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Middleware assigns every request an ID. A caller-supplied
// X-Request-ID is trusted and propagated; otherwise a fresh UUID v4 is
// generated. The ID is set on the response header and request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
