// Package widgets provides the widget registry: the static catalog that maps
// every element type to its defaults, editable controls and render function.
package widgets

import (
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// Category groups widgets in the editor palette
type Category string

const (
	CategoryBasic     Category = "basic"
	CategoryMedia     Category = "media"
	CategoryLayout    Category = "layout"
	CategoryAdvanced  Category = "advanced"
	CategoryStructure Category = "structure"
)

// ControlKind is the input used to edit a setting
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlTextarea ControlKind = "textarea"
	ControlNumber   ControlKind = "number"
	ControlColor    ControlKind = "color"
	ControlSelect   ControlKind = "select"
	ControlToggle   ControlKind = "toggle"
	ControlURL      ControlKind = "url"
	ControlImage    ControlKind = "image"
	ControlCode     ControlKind = "code"
)

// Control describes one editable field of a widget
type Control struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	Kind       ControlKind `json:"kind"`
	Options    []string    `json:"options,omitempty"`
	Min        *float64    `json:"min,omitempty"`
	Max        *float64    `json:"max,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Responsive bool        `json:"responsive,omitempty"`
	Group      string      `json:"group,omitempty"`
}

// RenderFunc turns an element into a markup fragment. It must be pure: the same
// element and context always give the same fragment.
type RenderFunc func(el rendering.Element, ctx *rendering.RenderContext) (string, error)

// Definition is the registry entry of one element type
type Definition struct {
	Type            document.ElementType   `json:"type"`
	Label           string                 `json:"label"`
	Category        Category               `json:"category"`
	DefaultSettings document.Settings      `json:"defaultSettings"`
	IsContainer     bool                   `json:"isContainer"`
	AllowedChildren []document.ElementType `json:"allowedChildren,omitempty"`
	// SlotType and SlotCount describe the child slots synthesized on creation
	SlotType  document.ElementType `json:"slotType,omitempty"`
	SlotCount int                  `json:"slotCount,omitempty"`
	// SlotOnly types may only live inside a container that allows them
	SlotOnly bool       `json:"slotOnly,omitempty"`
	Controls []Control  `json:"controls"`
	Render   RenderFunc `json:"-"`
}

// Control returns the control editing key
func (d *Definition) Control(key string) (Control, bool) {
	for _, c := range d.Controls {
		if c.Key == key {
			return c, true
		}
	}
	return Control{}, false
}

// Allows reports whether child may be placed inside this definition's node
func (d *Definition) Allows(child document.ElementType) bool {
	if !d.IsContainer {
		return false
	}
	if len(d.AllowedChildren) == 0 {
		return true
	}
	for _, t := range d.AllowedChildren {
		if t == child {
			return true
		}
	}
	return false
}

// Bounds is a helper for building numeric controls
func Bounds(lo, hi float64) (*float64, *float64) {
	return &lo, &hi
}
