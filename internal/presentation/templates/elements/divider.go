package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

var dividerTmpl = template.Must(template.New("divider").Parse(`<hr style="{{.}}">`))

// DividerStyles lists the border styles a divider accepts
var DividerStyles = []string{"solid", "dashed", "dotted", "double"}

type dividerProps struct {
	Color     string `mapstructure:"color"`
	Thickness string `mapstructure:"thickness"`
	Style     string `mapstructure:"style"`
	Margin    string `mapstructure:"margin"`
}

// dividerBorder builds the border-top shorthand from whichever parts are set
func dividerBorder(p dividerProps) string {
	var parts []string
	if v := cssLength(p.Thickness); v != "" {
		parts = append(parts, v)
	}
	for _, s := range DividerStyles {
		if strings.EqualFold(strings.TrimSpace(p.Style), s) {
			parts = append(parts, s)
			break
		}
	}
	if v := strings.TrimSpace(p.Color); v != "" && !strings.Contains(v, " ") {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

// RenderDivider renders a horizontal rule
func RenderDivider(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p dividerProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("border", "0").
		set("border-top", dividerBorder(p)).
		length("margin", p.Margin)
	return execute(dividerTmpl, style.CSS())
}
