// Package handlers adapts the content services to gin.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer/content-service/internal/api/dto"
	"github.com/wayfarer/content-service/internal/core/cache"
	"github.com/wayfarer/content-service/internal/core/docdb"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthHandler reports on the cache and the document store. Requests are
// served from the document store when the cache is down, so a cache outage
// degrades the service without making it unready.
type HealthHandler struct {
	store cache.Store
	db    docdb.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store cache.Store, db docdb.Client) *HealthHandler {
	return &HealthHandler{store: store, db: db}
}

func componentStatus(err error) string {
	if err != nil {
		return StatusUnhealthy
	}
	return StatusHealthy
}

func (h *HealthHandler) check(ctx context.Context, cacheProbe func(context.Context) error) (cacheErr, dbErr error) {
	return cacheProbe(ctx), h.db.Ping(ctx)
}

// Health handles GET /health
// @Summary Health check
// @Description Reports each dependency. The cache probe writes, reads and
// @Description deletes a key. A cache outage reports degraded with 200.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy or degraded"
// @Failure 503 {object} dto.HealthResponse "Document store unavailable"
// @Router /api/v1/content-service/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	cacheErr, dbErr := h.check(c.Request.Context(), h.store.HealthCheck)

	response := dto.HealthResponse{
		Status: StatusHealthy,
		Components: map[string]string{
			"cache": componentStatus(cacheErr),
			"docdb": componentStatus(dbErr),
		},
	}
	code := http.StatusOK
	switch {
	case dbErr != nil:
		response.Status = StatusUnhealthy
		code = http.StatusServiceUnavailable
	case cacheErr != nil:
		response.Status = StatusDegraded
	}
	c.JSON(code, response)
}

// Ready handles GET /ready
// @Summary Readiness check
// @Description Ready while the document store answers.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service ready"
// @Failure 503 {object} dto.HealthResponse "Service not ready"
// @Router /api/v1/content-service/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	cacheErr, dbErr := h.check(c.Request.Context(), h.store.Ping)
	if dbErr != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "not ready", Reason: "docdb unavailable"})
		return
	}

	response := dto.HealthResponse{Status: "ready"}
	if cacheErr != nil {
		response.Reason = "cache unavailable, serving from docdb"
	}
	c.JSON(http.StatusOK, response)
}

// Live handles GET /live
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service alive"
// @Router /api/v1/content-service/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "alive"})
}
