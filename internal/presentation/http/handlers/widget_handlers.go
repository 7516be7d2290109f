package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
)

// WidgetHandlers serves the widget catalog and starter templates
type WidgetHandlers struct {
	registry *widgets.Registry
	starters *services.StarterService
}

// NewWidgetHandlers creates widget handlers with injected dependencies
func NewWidgetHandlers(registry *widgets.Registry, starters *services.StarterService) *WidgetHandlers {
	return &WidgetHandlers{registry: registry, starters: starters}
}

// GetWidgets handles GET /api/v1/widgets - the palette, optionally by category
func (h *WidgetHandlers) GetWidgets(c *gin.Context) {
	defs := h.registry.List()
	if category := c.Query("category"); category != "" {
		defs = h.registry.ListByCategory(widgets.Category(category))
	}
	c.JSON(http.StatusOK, gin.H{
		"widgets":    defs,
		"categories": h.registry.Categories(),
	})
}

// GetWidget handles GET /api/v1/widgets/:type
func (h *WidgetHandlers) GetWidget(c *gin.Context) {
	def, ok := h.registry.Get(document.ElementType(c.Param("type")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown widget type"})
		return
	}
	c.JSON(http.StatusOK, def)
}

// GetStarters handles GET /api/v1/starters
func (h *WidgetHandlers) GetStarters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"starters": h.starters.List()})
}
