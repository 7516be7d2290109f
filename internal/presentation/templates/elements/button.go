package elements

import (
	"html/template"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// buttonTmpl renders a bulletproof link button: the outer div only carries
// alignment, every visual setting sits on the anchor.
var buttonTmpl = template.Must(template.New("button").Parse(
	`<div{{if .WrapperStyle}} style="{{.WrapperStyle}}"{{end}}><a{{if .Href}} href="{{.Href}}" target="_blank"{{end}} style="{{.Style}}">{{.Label}}</a></div>`,
))

type buttonProps struct {
	Label           string `mapstructure:"label"`
	Href            string `mapstructure:"href"`
	BackgroundColor string `mapstructure:"backgroundColor"`
	TextColor       string `mapstructure:"textColor"`
	FontSize        string `mapstructure:"fontSize"`
	FontWeight      string `mapstructure:"fontWeight"`
	Padding         string `mapstructure:"padding"`
	BorderRadius    string `mapstructure:"borderRadius"`
	Align           string `mapstructure:"align"`
}

type buttonData struct {
	WrapperStyle template.CSS
	Style        template.CSS
	Href         string
	Label        string
}

// RenderButton renders a call-to-action link styled as a button
func RenderButton(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p buttonProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	wrapper := &styleBuilder{}
	wrapper.set("text-align", alignment(p.Align))

	style := &styleBuilder{}
	style.set("display", "inline-block").
		set("background-color", p.BackgroundColor).
		set("color", p.TextColor).
		length("font-size", p.FontSize).
		set("font-weight", p.FontWeight).
		length("padding", p.Padding).
		length("border-radius", p.BorderRadius).
		set("text-decoration", "none")

	href := p.Href
	if ctx != nil {
		href = trackURL(href, ctx.LinkTracking)
	}
	return execute(buttonTmpl, buttonData{
		WrapperStyle: wrapper.CSS(),
		Style:        style.CSS(),
		Href:         href,
		Label:        p.Label,
	})
}
