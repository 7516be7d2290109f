package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// Class names carried by layout markup; the importer ignores them
const (
	ColumnsClass = "bb-columns"
	ColumnClass  = "bb-column"
)

var columnsTmpl = template.Must(template.New("columns").Parse(
	`<div class="` + ColumnsClass + `" style="{{.Style}}">{{.Children}}</div>`,
))

var columnTmpl = template.Must(template.New("column").Parse(
	`<div class="` + ColumnClass + `" style="{{.Style}}">{{.Children}}</div>`,
))

type columnsProps struct {
	Gap             string `mapstructure:"gap"`
	Padding         string `mapstructure:"padding"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	StackOnMobile   bool   `mapstructure:"stackOnMobile"`
}

type columnProps struct {
	Padding         string `mapstructure:"padding"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	VerticalAlign   string `mapstructure:"verticalAlign"`
}

type layoutData struct {
	Style    template.CSS
	Children template.HTML
}

// verticalAlignments maps column settings onto flex item alignment
var verticalAlignments = map[string]string{
	"top":    "flex-start",
	"middle": "center",
	"bottom": "flex-end",
}

// VerticalAlignFromFlex is the inverse of the column vertical alignment
// mapping. The logical start and end keywords are accepted too.
func VerticalAlignFromFlex(alignSelf string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(alignSelf))
	switch value {
	case "start":
		value = "flex-start"
	case "end":
		value = "flex-end"
	}
	for setting, flex := range verticalAlignments {
		if flex == value {
			return setting, true
		}
	}
	return "", false
}

// RenderColumns renders an n-column row as a flex container
func RenderColumns(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p columnsProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("display", "flex")
	if p.StackOnMobile && ctx != nil && ctx.Viewport == document.ViewportMobile {
		style.set("flex-direction", "column")
	}
	style.length("gap", p.Gap).
		length("padding", p.Padding).
		set("background-color", p.BackgroundColor)

	return execute(columnsTmpl, layoutData{
		Style:    style.CSS(),
		Children: template.HTML(strings.Join(el.Children, "")),
	})
}

// RenderColumn renders one column slot
func RenderColumn(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p columnProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("flex", "1 1 0").
		set("min-width", "0").
		length("padding", p.Padding).
		set("background-color", p.BackgroundColor).
		set("align-self", verticalAlignments[strings.ToLower(strings.TrimSpace(p.VerticalAlign))])

	return execute(columnTmpl, layoutData{
		Style:    style.CSS(),
		Children: template.HTML(strings.Join(el.Children, "")),
	})
}
