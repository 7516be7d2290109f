package elements

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// RawMarkerClass marks the wrapper of verbatim markup so a later import can
// recover the exact fragment.
const RawMarkerClass = "bb-raw"

var rawHTMLTmpl = template.Must(template.New("rawHTML").Parse(
	`<div class="` + RawMarkerClass + `">{{.}}</div>`,
))

var (
	ugcPolicy     *bluemonday.Policy
	ugcPolicyOnce sync.Once
)

func sanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.AllowStyling()
		ugcPolicy.AllowStyles(
			"color", "background-color", "text-align", "font-size", "font-weight",
			"font-family", "line-height", "padding", "margin", "width", "height", "border",
		).Globally()
	})
	return ugcPolicy
}

type rawHTMLProps struct {
	HTML string `mapstructure:"html"`
}

// RenderRawHTML emits stored markup verbatim inside a marker div. When the
// context asks for it the markup is passed through the UGC sanitizer first.
func RenderRawHTML(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p rawHTMLProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	content := p.HTML
	if ctx != nil && ctx.SanitizeRawHTML {
		content = sanitizer().Sanitize(content)
	}
	return execute(rawHTMLTmpl, template.HTML(content))
}
