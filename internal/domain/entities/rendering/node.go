package rendering

import "github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"

// Element is what a widget render function receives: the node identity, its
// settings already resolved for the current viewport, and its rendered children.
type Element struct {
	ID       string               `json:"id"`
	Type     document.ElementType `json:"type"`
	Props    map[string]any       `json:"props"`
	Children []string             `json:"children,omitempty"`
}

// Frame describes the editor metadata injected around a rendered element
type Frame struct {
	ID          string               `json:"id"`
	Type        document.ElementType `json:"type"`
	Label       string               `json:"label"`
	IsContainer bool                 `json:"isContainer"`
	Selected    bool                 `json:"selected"`
	Unknown     bool                 `json:"unknown,omitempty"`
}
