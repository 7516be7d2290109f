package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// DocumentHandlers contains the stored document handlers
type DocumentHandlers struct {
	documents *services.DocumentService
	logger    *logging.ChanneledLogger
}

// NewDocumentHandlers creates document handlers with injected dependencies
func NewDocumentHandlers(documents *services.DocumentService, logger *logging.ChanneledLogger) *DocumentHandlers {
	return &DocumentHandlers{documents: documents, logger: logger}
}

// PostSave handles POST /api/v1/sessions/:id/save
func (h *DocumentHandlers) PostSave(c *gin.Context) {
	start := time.Now()
	stored, err := h.documents.SaveSession(c.Param("id"))
	if err != nil {
		h.logger.Database().Error("Save failed", "sessionId", c.Param("id"), "error", err.Error())
		respondError(c, err)
		return
	}
	h.logger.Database().Info("Save request completed", "documentId", stored.ID, "duration", time.Since(start))
	c.JSON(http.StatusOK, stored.Summary())
}

// GetDocuments handles GET /api/v1/documents
func (h *DocumentHandlers) GetDocuments(c *gin.Context) {
	summaries, err := h.documents.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

// GetDocument handles GET /api/v1/documents/:id (id or slug)
func (h *DocumentHandlers) GetDocument(c *gin.Context) {
	stored, err := h.documents.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// DeleteDocument handles DELETE /api/v1/documents/:id
func (h *DocumentHandlers) DeleteDocument(c *gin.Context) {
	if err := h.documents.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
