package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/tennis-sim/pkg/cache"
)

const serviceName = "tennis-sim"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cache  *cache.ResultCache
	logger *logrus.Entry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cache *cache.ResultCache, logger *logrus.Entry) *HealthHandler {
	return &HealthHandler{cache: cache, logger: logger}
}

func (h *HealthHandler) checkCache(c *gin.Context, checks map[string]string) bool {
	if !h.cache.Enabled() {
		checks["redis"] = "not_configured"
		return true
	}
	if err := h.cache.Ping(c.Request.Context()); err != nil {
		checks["redis"] = "failed: " + err.Error()
		return false
	}
	checks["redis"] = "ok"
	return true
}

// GetHealth reports degraded when the result cache is configured but unreachable
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}
	if !h.checkCache(c, response.Checks) {
		response.Status = "degraded"
	}
	c.JSON(http.StatusOK, response)
}

// GetReady returns the readiness status. Simulation runs without the cache,
// so only a broken configured cache makes the service not ready.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	statusCode := http.StatusOK
	if !h.checkCache(c, response.Checks) {
		response.Status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		h.logger.WithField("checks", response.Checks).Warn("Readiness check failed")
	}
	c.JSON(statusCode, response)
}
