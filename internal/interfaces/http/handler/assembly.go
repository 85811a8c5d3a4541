package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	appmanufacturing "github.com/lemonco/backend/internal/application/manufacturing"
)

// AssemblyHandler exposes the assembly order lifecycle over HTTP
type AssemblyHandler struct {
	BaseHandler
	service *appmanufacturing.AssemblyService
}

// NewAssemblyHandler creates a new AssemblyHandler
func NewAssemblyHandler(service *appmanufacturing.AssemblyService) *AssemblyHandler {
	return &AssemblyHandler{service: service}
}

// RegisterRoutes registers assembly order routes
func (h *AssemblyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/assembly-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:docNo", h.Get)
		orders.POST("/:docNo/post", h.Post)
		orders.POST("/:docNo/cancel", h.Cancel)
	}
}

// Create handles POST /api/v1/assembly-orders
func (h *AssemblyHandler) Create(c *gin.Context) {
	var input appmanufacturing.CreateAssemblyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /api/v1/assembly-orders/:docNo
func (h *AssemblyHandler) Get(c *gin.Context) {
	docNo := c.Param("docNo")

	order, err := h.service.Get(c.Request.Context(), docNo)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if order == nil {
		h.NotFound(c, fmt.Sprintf("Assembly order %s not found", docNo))
		return
	}
	h.Success(c, order)
}

// List handles GET /api/v1/assembly-orders
func (h *AssemblyHandler) List(c *gin.Context) {
	orders, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, orders)
}

// Post handles POST /api/v1/assembly-orders/:docNo/post. The posting
// outcome always comes back as a result body with a success flag; HTTP
// status stays 200 so callers can read the structured failure.
func (h *AssemblyHandler) Post(c *gin.Context) {
	result := h.service.Post(c.Request.Context(), c.Param("docNo"))
	h.Success(c, result)
}

// Cancel handles POST /api/v1/assembly-orders/:docNo/cancel
func (h *AssemblyHandler) Cancel(c *gin.Context) {
	cancelled := h.service.Cancel(c.Request.Context(), c.Param("docNo"))
	h.Success(c, gin.H{"cancelled": cancelled})
}
