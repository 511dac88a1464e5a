package handler

import (
	"net/http"

	"watercare/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	healthService *service.HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(healthService *service.HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthStatus := h.healthService.CheckHealth(r.Context())

	// Degraded still serves the dashboard from the remote API
	status := http.StatusOK
	if healthStatus.Status == service.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, healthStatus)
}
