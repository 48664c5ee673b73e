package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestFromContext(t *testing.T) {
	t.Run("TC-1: should return stored request ID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		if got := FromContext(ctx); got != "req-123" {
			t.Errorf("got %q, want %q", got, "req-123")
		}
	})

	t.Run("TC-2: should return empty string when absent", func(t *testing.T) {
		if got := FromContext(context.Background()); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("TC-1: should generate a UUID when no header is present", func(t *testing.T) {
		var seen string
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("context ID %q is not a UUID: %v", seen, err)
		}
		if got := rec.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header %q does not match context ID %q", got, seen)
		}
	})

	t.Run("TC-2: should propagate a caller-supplied ID", func(t *testing.T) {
		var seen string
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "upstream-42" {
			t.Errorf("context ID = %q, want upstream-42", seen)
		}
		if got := rec.Header().Get(RequestIDHeader); got != "upstream-42" {
			t.Errorf("response header = %q, want upstream-42", got)
		}
	})

	t.Run("TC-3: should assign distinct IDs to separate requests", func(t *testing.T) {
		ids := make(map[string]bool)
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ids[FromContext(r.Context())] = true
		}))

		for i := 0; i < 5; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}
		if len(ids) != 5 {
			t.Errorf("got %d distinct IDs, want 5", len(ids))
		}
	})
}
