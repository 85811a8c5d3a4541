package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/lemonco/backend/internal/application/catalog"
	"github.com/lemonco/backend/internal/interfaces/http/dto"
)

// maxBomCSVSize bounds the accepted CSV upload body (1MB)
const maxBomCSVSize = 1 << 20

// ItemHandler exposes the item master and BOM import/export over HTTP
type ItemHandler struct {
	BaseHandler
	service *appcatalog.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service *appcatalog.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers item master and BOM routes
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.GET("", h.Search)
		items.GET("/:code", h.Get)
		items.GET("/:code/bom", h.GetBom)
		items.PUT("/:code/bom", h.ImportBom)
		items.GET("/:code/bom.csv", h.ExportBom)
	}
}

// Search handles GET /api/v1/items?q=
func (h *ItemHandler) Search(c *gin.Context) {
	items, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, items)
}

// Get handles GET /api/v1/items/:code
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, item)
}

// GetBom handles GET /api/v1/items/:code/bom
func (h *ItemHandler) GetBom(c *gin.Context) {
	lines, err := h.service.GetBom(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, lines)
}

// ImportBom handles PUT /api/v1/items/:code/bom with a CSV body
func (h *ItemHandler) ImportBom(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBomCSVSize))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}

	n, err := h.service.ImportBomCSV(c.Request.Context(), c.Param("code"), string(body))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"imported": n})
}

// ExportBom handles GET /api/v1/items/:code/bom.csv
func (h *ItemHandler) ExportBom(c *gin.Context) {
	out, err := h.service.ExportBomCSV(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=bom.csv")
	c.Data(http.StatusOK, "text/csv", []byte(out))
}
