// Package rendering provides domain entities for HTML rendering operations
package rendering

import "github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"

// RenderMode selects between export markup and editing-surface markup
type RenderMode string

const (
	// ModeClean produces export markup without editor metadata
	ModeClean RenderMode = "clean"
	// ModeInstrumented produces editing markup carrying identity and affordances
	ModeInstrumented RenderMode = "instrumented"
)

// RenderContext provides the context for HTML rendering operations
type RenderContext struct {
	Viewport     document.Viewport     `json:"viewport"`
	Mode         RenderMode            `json:"mode"`
	GlobalStyles document.GlobalStyles `json:"globalStyles"`
	SelectedID   string                `json:"selectedId,omitempty"`

	// LinkTracking holds utm_* parameters appended to outgoing links
	LinkTracking map[string]string `json:"linkTracking,omitempty"`
	// SanitizeRawHTML runs raw-html blocks through the UGC sanitizer
	SanitizeRawHTML bool `json:"sanitizeRawHtml,omitempty"`
}

// NewRenderContext creates a render context for a viewport and mode
func NewRenderContext(vp document.Viewport, mode RenderMode, styles document.GlobalStyles) *RenderContext {
	if !vp.IsValid() {
		vp = document.ViewportDesktop
	}
	return &RenderContext{Viewport: vp, Mode: mode, GlobalStyles: styles}
}

// Instrumented reports whether editor metadata should be emitted
func (rc *RenderContext) Instrumented() bool {
	return rc != nil && rc.Mode == ModeInstrumented
}
