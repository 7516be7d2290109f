package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/container"
)

// HealthHandlers reports service health
type HealthHandlers struct {
	container *container.Container
	started   time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(c *container.Container) *HealthHandlers {
	return &HealthHandlers{container: c, started: time.Now()}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	status := http.StatusOK
	db := gin.H{"connection": "none"}
	if h.container.Database != nil {
		stats := h.container.Database.Stats()
		db = gin.H{"connection": h.container.Database.GetConnectionInfo(), "pool": stats}
		if healthy, _ := stats["healthy"].(bool); !healthy {
			status = http.StatusServiceUnavailable
		}
	}

	sessionStats := h.container.EditorService.Stats(0)
	c.JSON(status, gin.H{
		"status":      http.StatusText(status),
		"uptime":      time.Since(h.started).String(),
		"sessions":    sessionStats.Entries,
		"database":    db,
		"renderCache": h.container.RenderCache.Stats(0).Entries,
		"performance": h.container.PerfTracker.GetOverallStats(),
	})
}
