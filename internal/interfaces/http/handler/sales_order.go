package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/lemonco/backend/internal/application/trade"
)

// SalesOrderHandler exposes sales order creation and its validation
// helpers over HTTP
type SalesOrderHandler struct {
	BaseHandler
	service *apptrade.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(service *apptrade.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{service: service}
}

// RegisterRoutes registers sales order routes
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sales-orders", h.Create)
	rg.GET("/customers/:code/exists", h.CheckCustomer)
	rg.POST("/items/validate", h.ValidateItems)
}

// Create handles POST /api/v1/sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var input apptrade.CreateSalesOrderInput
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

// CheckCustomer handles GET /api/v1/customers/:code/exists
func (h *SalesOrderHandler) CheckCustomer(c *gin.Context) {
	exists, err := h.service.CustomerExists(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"exists": exists})
}

// validateItemsRequest carries the codes to check against the item master.
type validateItemsRequest struct {
	ItemCodes []string `json:"itemCodes" binding:"required"`
}

// ValidateItems handles POST /api/v1/items/validate. The response carries
// the codes that do NOT exist; an empty list means all items are valid.
func (h *SalesOrderHandler) ValidateItems(c *gin.Context) {
	var req validateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invalid, err := h.service.ValidateItems(c.Request.Context(), req.ItemCodes)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"invalidItemCodes": invalid})
}
