package elements

import (
	"html/template"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

var imageTmpl = template.Must(template.New("image").Parse(
	`{{if .Href}}<a href="{{.Href}}" target="_blank">{{end}}<img src="{{.Src}}" alt="{{.Alt}}" style="{{.Style}}">{{if .Href}}</a>{{end}}`,
))

type imageProps struct {
	Src   string `mapstructure:"src"`
	Alt   string `mapstructure:"alt"`
	Width string `mapstructure:"width"`
	Align string `mapstructure:"align"`
	Href  string `mapstructure:"href"`
}

type imageData struct {
	Src   string
	Alt   string
	Href  string
	Style template.CSS
}

// ImageAlignMargin maps an alignment onto the margin shorthand used to place a
// block image. The importer reverses this mapping.
func ImageAlignMargin(align string) string {
	switch alignment(align) {
	case "left":
		return "0 auto 0 0"
	case "center":
		return "0 auto"
	case "right":
		return "0 0 0 auto"
	default:
		return ""
	}
}

// RenderImage renders a block image, optionally wrapped in a link
func RenderImage(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p imageProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("display", "block").
		length("width", p.Width).
		set("max-width", "100%").
		set("height", "auto").
		set("border", "0").
		set("margin", ImageAlignMargin(p.Align))

	href := p.Href
	if ctx != nil {
		href = trackURL(href, ctx.LinkTracking)
	}
	return execute(imageTmpl, imageData{
		Src:   p.Src,
		Alt:   p.Alt,
		Href:  href,
		Style: style.CSS(),
	})
}
