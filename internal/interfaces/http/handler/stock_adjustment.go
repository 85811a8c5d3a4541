package handler

import (
	"github.com/gin-gonic/gin"
	appstock "github.com/lemonco/backend/internal/application/stock"
)

// StockAdjustmentHandler exposes stock adjustment commits over HTTP
type StockAdjustmentHandler struct {
	BaseHandler
	service *appstock.AdjustmentService
}

// NewStockAdjustmentHandler creates a new StockAdjustmentHandler
func NewStockAdjustmentHandler(service *appstock.AdjustmentService) *StockAdjustmentHandler {
	return &StockAdjustmentHandler{service: service}
}

// RegisterRoutes registers stock adjustment routes
func (h *StockAdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/stock-adjustments", h.Create)
}

// Create handles POST /api/v1/stock-adjustments
func (h *StockAdjustmentHandler) Create(c *gin.Context) {
	var input appstock.CreateAdjustmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if result.Success {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}
