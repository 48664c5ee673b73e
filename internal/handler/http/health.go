package http

import (
	"encoding/json"
	"net/http"
	"time"

	"feedhook/internal/infra/store"
)

// HealthResponse is the JSON response for the health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
	Version   string                 `json:"version,omitempty"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler handles GET /health. It probes the state store and reports
// overall health with per-check detail.
type HealthHandler struct {
	Store   store.Store
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]CheckStatus{}
	status := "healthy"
	code := http.StatusOK

	if _, _, err := h.Store.Get(r.Context(), "health_probe"); err != nil {
		checks["store"] = CheckStatus{Status: "unhealthy", Message: err.Error()}
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		checks["store"] = CheckStatus{Status: "healthy"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// ReadyHandler handles GET /ready: 200 once the state store answers.
type ReadyHandler struct {
	Store store.Store
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, _, err := h.Store.Get(r.Context(), "health_probe"); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ready"})
}

// LiveHandler handles GET /live: always 200 while the process is up.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "alive"})
}
