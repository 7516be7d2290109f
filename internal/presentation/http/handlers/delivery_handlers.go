package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
)

// UploadRequest is a base64 image upload
type UploadRequest struct {
	Data     string `json:"data" binding:"required"`
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
}

// DeliveryHandlers contains the test-send and media upload handlers
type DeliveryHandlers struct {
	delivery *services.DeliveryService
	media    *services.MediaService
}

// NewDeliveryHandlers creates delivery handlers with injected dependencies
func NewDeliveryHandlers(delivery *services.DeliveryService, media *services.MediaService) *DeliveryHandlers {
	return &DeliveryHandlers{delivery: delivery, media: media}
}

// PostSendTest handles POST /api/v1/sessions/:id/send-test
func (h *DeliveryHandlers) PostSendTest(c *gin.Context) {
	var req services.TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.delivery.SendTest(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// PostMedia handles POST /api/v1/media. The response carries the settings to
// merge into an image element.
func (h *DeliveryHandlers) PostMedia(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	file, err := h.media.Upload(req.Data, req.Filename, req.Alt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"file":     file,
		"settings": file.ImageSettings(),
	})
}

// GetMedia handles GET /api/v1/media/:fileId
func (h *DeliveryHandlers) GetMedia(c *gin.Context) {
	file, err := h.media.GetByID(c.Param("fileId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, file)
}
