package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogging(t *testing.T) {
	t.Run("TC-1: should pass the request through", func(t *testing.T) {
		// Arrange
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		called := false
		handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		}))
		w := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/feeds", nil))

		// Assert
		if !called {
			t.Error("next handler was not called")
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", w.Code)
		}
	})
}

func TestRecover(t *testing.T) {
	t.Run("TC-1: should convert a panic into a 500 response", func(t *testing.T) {
		// Arrange
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		w := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/feeds", nil))

		// Assert
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "boom") {
			t.Error("panic value must not leak into the response")
		}
	})

	t.Run("TC-2: should not interfere with normal requests", func(t *testing.T) {
		// Arrange
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/feeds", nil))

		// Assert
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestLimitRequestBody(t *testing.T) {
	t.Run("TC-1: should allow bodies under the limit", func(t *testing.T) {
		// Arrange
		handler := LimitRequestBody(64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := io.ReadAll(r.Body); err != nil {
				http.Error(w, "too large", http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest("PUT", "/feeds", strings.NewReader("small body"))

		// Act
		handler.ServeHTTP(w, r)

		// Assert
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("TC-2: should reject bodies over the limit", func(t *testing.T) {
		// Arrange
		handler := LimitRequestBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := io.ReadAll(r.Body); err != nil {
				http.Error(w, "too large", http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest("PUT", "/feeds", strings.NewReader(strings.Repeat("x", 100)))

		// Act
		handler.ServeHTTP(w, r)

		// Assert
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got %d", w.Code)
		}
	})
}
