package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 5 * time.Second}
}

// Health reports liveness only.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    map[string]string{},
	})
}

// Ready runs every dependency check and answers 503 if any fails.
//
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status.Status = "error"
			status.Checks[name] = "failed: " + err.Error()
			continue
		}
		status.Checks[name] = "ok"
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}
