package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/infrastructure/persistence"
)

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{BaseHandler: NewBaseHandler(logger), db: db, version: version}
}

// RegisterProbes registers the probe routes on the engine root so they stay
// outside the versioned, authenticated API surface.
func (h *SystemHandler) RegisterProbes(engine *gin.Engine) {
	engine.GET("/healthz", h.Healthz)
	engine.GET("/readyz", h.Readyz)
}

// Healthz handles GET /healthz
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Readyz handles GET /readyz. Ready means the database answers.
func (h *SystemHandler) Readyz(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.logger.Warn("Readiness probe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
