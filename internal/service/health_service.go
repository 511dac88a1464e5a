package service

import (
	"context"
	"time"
)

// Health status constants
const (
	StatusHealthy      = "healthy"
	StatusDegraded     = "degraded"
	StatusUnhealthy    = "unhealthy"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// HealthStatus represents the overall health status of the application
type HealthStatus struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Records   int               `json:"records"`
	LoadedAt  *time.Time        `json:"loadedAt,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
}

// Pinger is anything whose reachability can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecker checks the remote API and the optional queue and database
type HealthChecker struct {
	api      Pinger
	queue    Pinger
	database Pinger
	store    RecordStore
	version  string
	timeout  time.Duration
}

// NewHealthService creates a new HealthChecker. queue and database may be nil when not configured.
func NewHealthService(api Pinger, queue Pinger, database Pinger, store RecordStore, version string) *HealthChecker {
	return &HealthChecker{
		api:      api,
		queue:    queue,
		database: database,
		store:    store,
		version:  version,
		timeout:  2 * time.Second,
	}
}

func (h *HealthChecker) check(ctx context.Context, p Pinger) string {
	// Each check gets its own timeout
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// determineOverallStatus calculates the overall health status based on service statuses
func (h *HealthChecker) determineOverallStatus(services map[string]string) string {
	// Without the remote API nothing can be read or written
	if services["api"] == StatusDisconnected {
		return StatusUnhealthy
	}

	// Any optional dependency down means degraded
	for name, status := range services {
		if name != "api" && status == StatusDisconnected {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

// CheckHealth performs health checks on all dependencies and returns the overall status
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	// Check remote API
	services := map[string]string{
		"api": h.check(ctx, h.api),
	}

	// Check queue and database only when configured
	if h.queue != nil {
		services["queue"] = h.check(ctx, h.queue)
	}
	if h.database != nil {
		services["database"] = h.check(ctx, h.database)
	}

	// Determine overall status
	status := &HealthStatus{
		Status:    h.determineOverallStatus(services),
		Services:  services,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}

	// Report what the record store currently holds
	if h.store != nil {
		status.Records = len(h.store.All())
		if loadedAt := h.store.LoadedAt(); !loadedAt.IsZero() {
			status.LoadedAt = &loadedAt
		}
	}

	return status
}
