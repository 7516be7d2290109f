package elements

import (
	"html/template"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

var spacerTmpl = template.Must(template.New("spacer").Parse(`<div style="{{.}}"></div>`))

// DefaultSpacerHeight keeps an empty spacer visible and recognizable on import
const DefaultSpacerHeight = "32"

type spacerProps struct {
	Height string `mapstructure:"height"`
}

// RenderSpacer renders an empty block of fixed height
func RenderSpacer(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p spacerProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	height := cssLength(p.Height)
	if height == "" || !safeCSSValue(height) {
		height = cssLength(DefaultSpacerHeight)
	}
	style := &styleBuilder{}
	style.set("height", height)
	return execute(spacerTmpl, style.CSS())
}
