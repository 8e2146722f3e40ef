package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	mapping *store.Mapping
	ready   atomic.Bool
	logger  *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mapping *store.Mapping, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mapping: mapping,
		logger:  logger.WithComponent("health-handler"),
	}
}

// SetReady marks startup reconciliation as finished
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Debug("Readiness changed", "ready", ready)
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Readiness reports ready once the mapping has been rebuilt and polling
// has started
func (h *HealthHandler) Readiness(c *gin.Context) {
	ready := h.ready.Load()

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not ready"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{
			"reconciled":   ready,
			"mapped_feeds": h.mapping.Len(),
		},
	})
}

// Liveness checks if the service is alive
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
