package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
)

// ImportMarkupRequest is the body of POST /sessions/:id/import/markup
type ImportMarkupRequest struct {
	HTML string `json:"html"`
	Mode string `json:"mode"`
}

// ExportHandlers renders, exports and imports session content
type ExportHandlers struct {
	editor *services.EditorService
	logger *logging.ChanneledLogger
}

// NewExportHandlers creates export handlers with injected dependencies
func NewExportHandlers(editor *services.EditorService, logger *logging.ChanneledLogger) *ExportHandlers {
	return &ExportHandlers{editor: editor, logger: logger}
}

// GetRender handles GET /api/v1/sessions/:id/render - instrumented editing markup
func (h *ExportHandlers) GetRender(c *gin.Context) {
	snap, err := h.editor.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	html, err := h.editor.RenderForEditing(snap.ID)
	if err != nil && !templates.IsRegistryOnly(err) {
		respondError(c, err)
		return
	}
	if err != nil {
		c.Header("X-Render-Warning", "unknown element types")
	}
	c.Header("X-Revision", strconv.FormatInt(snap.Revision, 10))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetExport handles GET /api/v1/sessions/:id/export - clean standalone markup.
// Query: viewport, fragment=true, title, download=true and utm_* link tracking.
func (h *ExportHandlers) GetExport(c *gin.Context) {
	start := time.Now()
	vp, err := document.ParseViewport(c.DefaultQuery("viewport", string(document.ViewportDesktop)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := templates.ExportOptions{
		Title:        c.Query("title"),
		FragmentOnly: c.Query("fragment") == "true",
		LinkTracking: linkTracking(c),
	}
	html, err := h.editor.ExportMarkup(c.Param("id"), vp, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("download") == "true" {
		name := "document"
		if snap, err := h.editor.GetSession(c.Param("id")); err == nil && snap.Title != "" {
			name = slug.Make(snap.Title)
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`.html"`)
	}

	h.logger.Render().Info("Export served",
		"sessionId", c.Param("id"), "viewport", vp, "bytes", len(html), "duration", time.Since(start))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetDocument handles GET /api/v1/sessions/:id/document - serialized JSON
func (h *ExportHandlers) GetDocument(c *gin.Context) {
	data, err := h.editor.ExportJSON(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// PostImportMarkup handles POST /api/v1/sessions/:id/import/markup. A JSON
// body carries html and mode; any other content type is taken as raw markup
// replacing the tree.
func (h *ExportHandlers) PostImportMarkup(c *gin.Context) {
	var req ImportMarkupRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	} else {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondBindError(c, err)
			return
		}
		req.HTML = string(body)
		req.Mode = c.Query("mode")
	}

	mode := services.ImportReplace
	if req.Mode == string(services.ImportAppend) {
		mode = services.ImportAppend
	}
	result, err := h.editor.ImportMarkup(c.Param("id"), req.HTML, mode)
	respondMutation(c, result, err)
}

// PostImportDocument handles POST /api/v1/sessions/:id/import/document with a
// serialized document body. Invalid documents are rejected with every violation.
func (h *ExportHandlers) PostImportDocument(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.editor.ImportJSON(c.Param("id"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// linkTracking collects utm_* query parameters
func linkTracking(c *gin.Context) map[string]string {
	var out map[string]string
	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, "utm_") || len(values) == 0 || values[0] == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = values[0]
	}
	return out
}
