package elements

import (
	"html/template"
	"strings"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

// headingTmpls holds one pre-parsed template per allowed level, since
// html/template does not allow actions inside tag names.
var headingTmpls = func() map[string]*template.Template {
	out := make(map[string]*template.Template, 6)
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		out[tag] = template.Must(template.New("heading-" + tag).Parse(
			`<` + tag + `{{if .Style}} style="{{.Style}}"{{end}}>{{.Text}}</` + tag + `>`,
		))
	}
	return out
}()

// DefaultHeadingLevel is used when the level setting is missing or invalid
const DefaultHeadingLevel = "h2"

type headingProps struct {
	Text       string `mapstructure:"text"`
	Level      string `mapstructure:"level"`
	Color      string `mapstructure:"color"`
	FontSize   string `mapstructure:"fontSize"`
	FontWeight string `mapstructure:"fontWeight"`
	FontFamily string `mapstructure:"fontFamily"`
	Align      string `mapstructure:"align"`
	Padding    string `mapstructure:"padding"`
}

type headingData struct {
	Style template.CSS
	Text  string
}

// HeadingLevel normalizes a level setting to an allowed tag name
func HeadingLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if _, ok := headingTmpls[level]; ok {
		return level
	}
	return DefaultHeadingLevel
}

// RenderHeading renders a single hN element carrying all of its styling inline
func RenderHeading(el rendering.Element, ctx *rendering.RenderContext) (string, error) {
	var p headingProps
	if err := decodeProps(el.Props, &p); err != nil {
		return "", err
	}
	style := &styleBuilder{}
	style.set("margin", "0").
		length("padding", p.Padding).
		set("color", p.Color).
		length("font-size", p.FontSize).
		set("font-weight", p.FontWeight).
		set("font-family", p.FontFamily).
		set("text-align", alignment(p.Align))

	return execute(headingTmpls[HeadingLevel(p.Level)], headingData{
		Style: style.CSS(),
		Text:  p.Text,
	})
}
