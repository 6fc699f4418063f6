package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/services"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

// HealthHandler reports server and dependency health.
type HealthHandler struct {
	store     *storage.Store
	cache     *services.CacheService
	provider  HealthChecker
	ai        HealthChecker
	logger    *logrus.Logger
	startTime time.Time
}

// HealthChecker is implemented by external clients that can report liveness.
type HealthChecker interface {
	IsHealthy() bool
}

// HealthResponse is the response payload for health checks.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents the status of an individual dependency.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// ReadinessResponse is the response payload for readiness checks.
type ReadinessResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store *storage.Store, cache *services.CacheService, provider, ai HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		cache:     cache,
		provider:  provider,
		ai:        ai,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth performs a health check of the server and its dependencies.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	checks := make(map[string]HealthCheck)
	overallStatus := "healthy"

	// Snapshot store: the server is useless without at least one run on disk.
	if _, err := h.store.LatestRecommendations(); err != nil {
		checks["snapshots"] = HealthCheck{
			Status:  "degraded",
			Message: "no recommendation snapshot on disk yet",
		}
		overallStatus = "degraded"
	} else {
		checks["snapshots"] = HealthCheck{Status: "healthy"}
	}

	// Cache is optional, a disabled cache is still healthy.
	start := time.Now()
	if h.cache.IsHealthy(c.Request.Context()) {
		status := "healthy"
		msg := ""
		if !h.cache.Enabled() {
			msg = "cache disabled"
		}
		checks["cache"] = HealthCheck{
			Status:  status,
			Message: msg,
			Latency: time.Since(start).String(),
		}
	} else {
		checks["cache"] = HealthCheck{
			Status:  "degraded",
			Message: "redis unreachable",
			Latency: time.Since(start).String(),
		}
		overallStatus = "degraded"
	}

	if h.provider != nil {
		if h.provider.IsHealthy() {
			checks["espn"] = HealthCheck{Status: "healthy"}
		} else {
			checks["espn"] = HealthCheck{
				Status:  "unhealthy",
				Message: "circuit breaker open",
			}
			overallStatus = "degraded"
		}
	}

	if h.ai != nil {
		if h.ai.IsHealthy() {
			checks["openai"] = HealthCheck{Status: "healthy"}
		} else {
			// Narrative generation fails open, so a broken AI client
			// only degrades the report, never the pipeline.
			checks["openai"] = HealthCheck{
				Status:  "degraded",
				Message: "circuit breaker open or not configured",
			}
			if overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Uptime:    time.Since(h.startTime).String(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady performs a readiness check. The server is ready as soon as the
// snapshot directories exist, stale data is acceptable.
func (h *HealthHandler) GetReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadinessResponse{
		Ready:     true,
		Timestamp: time.Now().UTC(),
	})
}
