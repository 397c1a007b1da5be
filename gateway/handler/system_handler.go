package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/pkg/apperr"
)

// SystemHandler serves health and schema setup.
type SystemHandler struct {
	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	version string
}

func NewSystemHandler(ping, migrate func(ctx context.Context) error, version string) *SystemHandler {
	return &SystemHandler{ping: ping, migrate: migrate, version: version}
}

// Health GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":  false,
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "version": h.version})
}

// SetupDatabase POST /api/setup/database (admin)
func (h *SystemHandler) SetupDatabase(c *gin.Context) {
	if h.migrate == nil {
		fail(c, apperr.ConfigurationMissing("database"))
		return
	}
	if err := h.migrate(c.Request.Context()); err != nil {
		fail(c, apperr.Upstream("database", err))
		return
	}
	ok(c, gin.H{"migrated": true})
}
