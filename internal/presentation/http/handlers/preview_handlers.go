package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
)

// PreviewHandlers upgrades live preview connections
type PreviewHandlers struct {
	editor      *services.EditorService
	broadcaster *messaging.PreviewBroadcaster
	logger      *logging.ChanneledLogger
}

// NewPreviewHandlers creates preview handlers with injected dependencies
func NewPreviewHandlers(editor *services.EditorService, broadcaster *messaging.PreviewBroadcaster, logger *logging.ChanneledLogger) *PreviewHandlers {
	return &PreviewHandlers{editor: editor, broadcaster: broadcaster, logger: logger}
}

// GetPreview handles GET /api/v1/sessions/:id/preview. The first message is
// the current render; later ones follow every session change.
func (h *PreviewHandlers) GetPreview(c *gin.Context) {
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
	initial, err := json.Marshal(messaging.PreviewMessage{
		Type:       messaging.MessageRender,
		SessionID:  snap.ID,
		Revision:   snap.Revision,
		Viewport:   string(snap.Viewport),
		SelectedID: snap.SelectedID,
		HTML:       html,
		CanUndo:    snap.CanUndo,
		CanRedo:    snap.CanRedo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := messaging.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Preview().Warn("Preview upgrade failed", "sessionId", snap.ID, "error", err.Error())
		return
	}
	messaging.NewPreviewClient(snap.ID, conn).Serve(h.broadcaster, initial)
}
