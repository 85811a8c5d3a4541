package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lemonco/backend/internal/interfaces/http/dto"
)

// ConnectionTester reports whether the external system is reachable.
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

// HealthHandler exposes liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	erp ConnectionTester
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(erp ConnectionTester) *HealthHandler {
	return &HealthHandler{erp: erp}
}

// Live handles GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. Readiness follows the external system:
// the first successful probe may establish the ERP session as a side
// effect.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.erp.TestConnection(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse(dto.ErrCodeERPUnavailable, "ERP backend is not reachable"))
		return
	}
	h.Success(c, gin.H{"status": "ready", "erp": "connected"})
}
