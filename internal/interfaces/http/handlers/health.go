// internal/interfaces/http/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
)

// Pinger is a dependency the health check can ping
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler reports liveness and readiness
type HealthHandler struct {
	config  *config.Config
	checks  map[string]Pinger
	started time.Time
}

// NewHealthHandler creates a health handler probing the named dependencies
func NewHealthHandler(cfg *config.Config, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		config:  cfg,
		checks:  checks,
		started: time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     h.config.App.Version,
		"environment": h.config.App.Environment,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}
