package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// textTmpl renders a paragraph; Content is escaped line by line before it is
// joined with <br> so it can be trusted here.
var textTmpl = template.Must(template.New("text").Parse(
	`<p{{if .Style}} style="{{.Style}}"{{end}}>{{.Content}}</p>`,
))

type textProps struct {
	Content    string `mapstructure:"content"`
	Color      string `mapstructure:"color"`
	FontSize   string `mapstructure:"fontSize"`
	LineHeight string `mapstructure:"lineHeight"`
	FontFamily string `mapstructure:"fontFamily"`
	Align      string `mapstructure:"align"`
	Padding    string `mapstructure:"padding"`
}

type textData struct {
	Style   template.CSS
	Content template.HTML
}

// escapeMultiline escapes text and turns newlines into line breaks
func escapeMultiline(text string) template.HTML {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

// RenderText renders a paragraph of plain text
func RenderText(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p textProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("margin", "0").
		length("padding", p.Padding).
		set("color", p.Color).
		length("font-size", p.FontSize).
		set("line-height", p.LineHeight).
		set("font-family", p.FontFamily).
		set("text-align", alignment(p.Align))

	return execute(textTmpl, textData{
		Style:   style.CSS(),
		Content: escapeMultiline(p.Content),
	})
}
