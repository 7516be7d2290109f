package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// CreateSessionRequest opens a blank session, a starter or a stored document
type CreateSessionRequest struct {
	Starter    string `json:"starter"`
	DocumentID string `json:"documentId"`
}

// InsertElementRequest inserts either a default element of Type or a given Node
type InsertElementRequest struct {
	Type     document.ElementType  `json:"type"`
	Node     *document.ElementNode `json:"node"`
	ParentID string                `json:"parentId"`
	Index    *int                  `json:"index"`
}

// MoveElementRequest reparents an element
type MoveElementRequest struct {
	ParentID string `json:"parentId"`
	Index    *int   `json:"index"`
}

// SelectionRequest sets or clears the selection
type SelectionRequest struct {
	ElementID string `json:"elementId"`
}

// ViewportRequest switches the previewed viewport
type ViewportRequest struct {
	Viewport string `json:"viewport" binding:"required"`
}

// TitleRequest renames the document
type TitleRequest struct {
	Title string `json:"title"`
}

// SessionHandlers contains the editor session and tree mutation handlers
type SessionHandlers struct {
	editor    *services.EditorService
	documents *services.DocumentService
	starters  *services.StarterService
	logger    *logging.ChanneledLogger
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(editor *services.EditorService, documents *services.DocumentService, starters *services.StarterService, logger *logging.ChanneledLogger) *SessionHandlers {
	return &SessionHandlers{
		editor:    editor,
		documents: documents,
		starters:  starters,
		logger:    logger,
	}
}

// PostSession handles POST /api/v1/sessions
func (h *SessionHandlers) PostSession(c *gin.Context) {
	start := time.Now()
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	var snap *services.SessionSnapshot
	var err error
	switch {
	case req.DocumentID != "":
		snap, err = h.documents.OpenSession(req.DocumentID)
	case req.Starter != "":
		doc, starterErr := h.starters.Instantiate(req.Starter)
		if starterErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": starterErr.Error()})
			return
		}
		snap, err = h.editor.CreateSession(doc, "")
	default:
		snap, err = h.editor.CreateSession(nil, "")
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Editor().Info("Session opened via API",
		"sessionId", snap.ID, "starter", req.Starter, "documentId", req.DocumentID, "duration", time.Since(start))
	c.JSON(http.StatusCreated, snap)
}

// GetSessions handles GET /api/v1/sessions
func (h *SessionHandlers) GetSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.editor.ListSessions()})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandlers) GetSession(c *gin.Context) {
	snap, err := h.editor.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *SessionHandlers) DeleteSession(c *gin.Context) {
	if err := h.editor.CloseSession(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostElement handles POST /api/v1/sessions/:id/elements
func (h *SessionHandlers) PostElement(c *gin.Context) {
	var req InsertElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	index := indexOrAppend(req.Index)

	var result services.MutationResult
	var err error
	switch {
	case req.Node != nil:
		result, err = h.editor.Insert(c.Param("id"), req.ParentID, req.Node, index)
	case req.Type != "":
		result, err = h.editor.InsertNew(c.Param("id"), req.Type, req.ParentID, index)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type or node is required"})
		return
	}
	respondMutation(c, result, err)
}

// PatchElement handles PATCH /api/v1/sessions/:id/elements/:elementId with a
// partial settings map; null removes a key
func (h *SessionHandlers) PatchElement(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings: " + err.Error()})
		return
	}
	result, err := h.editor.Update(c.Param("id"), c.Param("elementId"), partial)
	respondMutation(c, result, err)
}

// DeleteElement handles DELETE /api/v1/sessions/:id/elements/:elementId
func (h *SessionHandlers) DeleteElement(c *gin.Context) {
	result, err := h.editor.Delete(c.Param("id"), c.Param("elementId"))
	respondMutation(c, result, err)
}

// PostDuplicate handles POST /api/v1/sessions/:id/elements/:elementId/duplicate
func (h *SessionHandlers) PostDuplicate(c *gin.Context) {
	result, err := h.editor.Duplicate(c.Param("id"), c.Param("elementId"))
	respondMutation(c, result, err)
}

// PostMove handles POST /api/v1/sessions/:id/elements/:elementId/move
func (h *SessionHandlers) PostMove(c *gin.Context) {
	var req MoveElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.editor.Move(c.Param("id"), c.Param("elementId"), req.ParentID, indexOrAppend(req.Index))
	respondMutation(c, result, err)
}

// PostDrop handles POST /api/v1/sessions/:id/drop
func (h *SessionHandlers) PostDrop(c *gin.Context) {
	var req services.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.editor.Drop(c.Param("id"), req)
	respondMutation(c, result, err)
}

// PostUndo handles POST /api/v1/sessions/:id/undo
func (h *SessionHandlers) PostUndo(c *gin.Context) {
	result, err := h.editor.Undo(c.Param("id"))
	respondMutation(c, result, err)
}

// PostRedo handles POST /api/v1/sessions/:id/redo
func (h *SessionHandlers) PostRedo(c *gin.Context) {
	result, err := h.editor.Redo(c.Param("id"))
	respondMutation(c, result, err)
}

// PutSelection handles PUT /api/v1/sessions/:id/selection
func (h *SessionHandlers) PutSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.editor.Select(c.Param("id"), req.ElementID)
	respondMutation(c, result, err)
}

// PutViewport handles PUT /api/v1/sessions/:id/viewport
func (h *SessionHandlers) PutViewport(c *gin.Context) {
	var req ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewport is required"})
		return
	}
	vp, err := document.ParseViewport(req.Viewport)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.editor.SetViewport(c.Param("id"), vp)
	respondMutation(c, result, err)
}

// PutStyles handles PUT /api/v1/sessions/:id/styles
func (h *SessionHandlers) PutStyles(c *gin.Context) {
	var styles document.GlobalStyles
	if err := c.ShouldBindJSON(&styles); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid styles"})
		return
	}
	result, err := h.editor.SetGlobalStyles(c.Param("id"), styles)
	respondMutation(c, result, err)
}

// PutTitle handles PUT /api/v1/sessions/:id/title
func (h *SessionHandlers) PutTitle(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.editor.SetTitle(c.Param("id"), req.Title)
	respondMutation(c, result, err)
}

func indexOrAppend(index *int) int {
	if index == nil {
		return document.AppendIndex
	}
	return *index
}
