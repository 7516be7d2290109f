package elements

import (
	"fmt"
	"sync"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
)

var (
	defaultRegistry     *widgets.Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in widgets
func DefaultRegistry() *widgets.Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := widgets.NewRegistry(Definitions()...)
		if err != nil {
			panic(fmt.Sprintf("invalid built-in widget catalog: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

var alignOptions = []string{"left", "center", "right"}

// contentTypes may appear inside a column
var contentTypes = []document.ElementType{
	document.TypeHeading,
	document.TypeText,
	document.TypeImage,
	document.TypeButton,
	document.TypeDivider,
	document.TypeSpacer,
	document.TypeRawHTML,
	document.TypeOneColumn,
	document.TypeTwoColumns,
	document.TypeThreeColumns,
	document.TypeFourColumns,
}

func numberControl(key, label string, lower, upper float64, unit string, responsive bool) widgets.Control {
	lo, hi := widgets.Bounds(lower, upper)
	return widgets.Control{Key: key, Label: label, Kind: widgets.ControlNumber, Min: lo, Max: hi, Unit: unit, Responsive: responsive, Group: "style"}
}

func colorControl(key, label string) widgets.Control {
	return widgets.Control{Key: key, Label: label, Kind: widgets.ControlColor, Group: "style"}
}

func alignControl() widgets.Control {
	return widgets.Control{Key: "align", Label: "Alignment", Kind: widgets.ControlSelect, Options: alignOptions, Responsive: true, Group: "style"}
}

func textControl(key, label string, kind widgets.ControlKind) widgets.Control {
	return widgets.Control{Key: key, Label: label, Kind: kind, Group: "content"}
}

func columnsDefinition(t document.ElementType, label string, slots int) widgets.Definition {
	return widgets.Definition{
		Type:     t,
		Label:    label,
		Category: widgets.CategoryLayout,
		DefaultSettings: document.Settings{
			"gap":           float64(16),
			"stackOnMobile": true,
		},
		IsContainer:     true,
		AllowedChildren: []document.ElementType{document.TypeColumn},
		SlotType:        document.TypeColumn,
		SlotCount:       slots,
		Controls: []widgets.Control{
			numberControl("gap", "Gap", 0, 96, "px", true),
			textControl("padding", "Padding", widgets.ControlText),
			colorControl("backgroundColor", "Background"),
			{Key: "stackOnMobile", Label: "Stack on mobile", Kind: widgets.ControlToggle, Group: "layout"},
		},
		Render: RenderColumns,
	}
}

// Definitions returns the built-in widget catalog in palette order
func Definitions() []widgets.Definition {
	return []widgets.Definition{
		{
			Type:     document.TypeHeading,
			Label:    "Heading",
			Category: widgets.CategoryBasic,
			DefaultSettings: document.Settings{
				"text":       "Heading",
				"level":      DefaultHeadingLevel,
				"color":      "#111827",
				"fontSize":   float64(28),
				"fontWeight": "700",
				"align":      "left",
				"padding":    "8px 0",
			},
			Controls: []widgets.Control{
				textControl("text", "Text", widgets.ControlText),
				{Key: "level", Label: "Level", Kind: widgets.ControlSelect, Options: []string{"h1", "h2", "h3", "h4", "h5", "h6"}, Group: "content"},
				colorControl("color", "Color"),
				numberControl("fontSize", "Font size", 10, 96, "px", true),
				{Key: "fontWeight", Label: "Weight", Kind: widgets.ControlSelect, Options: []string{"400", "500", "600", "700", "800"}, Group: "style"},
				textControl("fontFamily", "Font family", widgets.ControlText),
				alignControl(),
				textControl("padding", "Padding", widgets.ControlText),
			},
			Render: RenderHeading,
		},
		{
			Type:     document.TypeText,
			Label:    "Text",
			Category: widgets.CategoryBasic,
			DefaultSettings: document.Settings{
				"content":    "Write something here.",
				"color":      "#374151",
				"fontSize":   float64(16),
				"lineHeight": float64(1.6),
				"align":      "left",
				"padding":    "8px 0",
			},
			Controls: []widgets.Control{
				textControl("content", "Content", widgets.ControlTextarea),
				colorControl("color", "Color"),
				numberControl("fontSize", "Font size", 8, 72, "px", true),
				numberControl("lineHeight", "Line height", 1, 3, "", false),
				textControl("fontFamily", "Font family", widgets.ControlText),
				alignControl(),
				textControl("padding", "Padding", widgets.ControlText),
			},
			Render: RenderText,
		},
		{
			Type:     document.TypeImage,
			Label:    "Image",
			Category: widgets.CategoryMedia,
			DefaultSettings: document.Settings{
				"src":   "https://placehold.co/600x300",
				"alt":   "",
				"width": "100%",
				"align": "center",
				"href":  "",
			},
			Controls: []widgets.Control{
				textControl("src", "Image", widgets.ControlImage),
				textControl("alt", "Alt text", widgets.ControlText),
				{Key: "width", Label: "Width", Kind: widgets.ControlText, Responsive: true, Group: "style"},
				alignControl(),
				textControl("href", "Link", widgets.ControlURL),
			},
			Render: RenderImage,
		},
		{
			Type:     document.TypeButton,
			Label:    "Button",
			Category: widgets.CategoryBasic,
			DefaultSettings: document.Settings{
				"label":           "Click here",
				"href":            "https://example.com",
				"backgroundColor": "#2563eb",
				"textColor":       "#ffffff",
				"fontSize":        float64(16),
				"fontWeight":      "600",
				"padding":         "12px 24px",
				"borderRadius":    float64(4),
				"align":           "center",
			},
			Controls: []widgets.Control{
				textControl("label", "Label", widgets.ControlText),
				textControl("href", "Link", widgets.ControlURL),
				colorControl("backgroundColor", "Background"),
				colorControl("textColor", "Text color"),
				numberControl("fontSize", "Font size", 10, 48, "px", true),
				{Key: "fontWeight", Label: "Weight", Kind: widgets.ControlSelect, Options: []string{"400", "500", "600", "700"}, Group: "style"},
				textControl("padding", "Padding", widgets.ControlText),
				numberControl("borderRadius", "Corner radius", 0, 48, "px", false),
				alignControl(),
			},
			Render: RenderButton,
		},
		{
			Type:     document.TypeDivider,
			Label:    "Divider",
			Category: widgets.CategoryLayout,
			DefaultSettings: document.Settings{
				"color":     "#e5e7eb",
				"thickness": float64(1),
				"style":     "solid",
				"margin":    "16px 0",
			},
			Controls: []widgets.Control{
				colorControl("color", "Color"),
				numberControl("thickness", "Thickness", 1, 16, "px", false),
				{Key: "style", Label: "Style", Kind: widgets.ControlSelect, Options: DividerStyles, Group: "style"},
				textControl("margin", "Spacing", widgets.ControlText),
			},
			Render: RenderDivider,
		},
		{
			Type:     document.TypeSpacer,
			Label:    "Spacer",
			Category: widgets.CategoryLayout,
			DefaultSettings: document.Settings{
				"height": float64(32),
			},
			Controls: []widgets.Control{
				numberControl("height", "Height", 4, 240, "px", true),
			},
			Render: RenderSpacer,
		},
		{
			Type:     document.TypeRawHTML,
			Label:    "HTML",
			Category: widgets.CategoryAdvanced,
			DefaultSettings: document.Settings{
				"html": "<p>Custom HTML</p>",
			},
			Controls: []widgets.Control{
				textControl("html", "Markup", widgets.ControlCode),
			},
			Render: RenderRawHTML,
		},
		columnsDefinition(document.TypeOneColumn, "1 Column", 1),
		columnsDefinition(document.TypeTwoColumns, "2 Columns", 2),
		columnsDefinition(document.TypeThreeColumns, "3 Columns", 3),
		columnsDefinition(document.TypeFourColumns, "4 Columns", 4),
		{
			Type:            document.TypeColumn,
			Label:           "Column",
			Category:        widgets.CategoryStructure,
			DefaultSettings: document.Settings{},
			IsContainer:     true,
			AllowedChildren: contentTypes,
			SlotOnly:        true,
			Controls: []widgets.Control{
				textControl("padding", "Padding", widgets.ControlText),
				colorControl("backgroundColor", "Background"),
				{Key: "verticalAlign", Label: "Vertical align", Kind: widgets.ControlSelect, Options: []string{"top", "middle", "bottom"}, Group: "layout"},
			},
			Render: RenderColumn,
		},
	}
}
