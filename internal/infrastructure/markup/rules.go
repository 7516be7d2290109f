package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
)

// rule is one classification step. Rules are tried in order and the first
// whose match accepts the node builds the result.
type rule struct {
	name  string
	match func(n *html.Node) bool
	build func(imp *Importer, n *html.Node) []*document.ElementNode
}

// Marker classes written by the renderer
const (
	rawMarkerClass = "bb-raw"
	containerClass = "bb-container"
	unknownClass   = "bb-unknown"
	editorAttr     = "data-bb-editor"
	preheaderClass = "bb-preheader"
)

var opaqueElements = map[atom.Atom]bool{
	atom.Table:  true,
	atom.Script: true,
	atom.Style:  true,
	atom.Iframe: true,
	atom.Form:   true,
	atom.Svg:    true,
	atom.Video:  true,
}

// blockElements are generic containers that may act as spacers, flex rows or
// transparent wrappers.
var blockElements = map[atom.Atom]bool{
	atom.Div:     true,
	atom.Section: true,
	atom.Article: true,
	atom.Main:    true,
	atom.Aside:   true,
	atom.Header:  true,
	atom.Footer:  true,
	atom.Center:  true,
	atom.Td:      true,
}

var headingLevels = map[atom.Atom]string{
	atom.H1: "h1", atom.H2: "h2", atom.H3: "h3",
	atom.H4: "h4", atom.H5: "h5", atom.H6: "h6",
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[n.DataAtom]
}

// defaultRules returns the classification rules in priority order
func defaultRules() []rule {
	return []rule{
		{name: "raw-marker", match: matchRawMarker, build: buildRawMarker},
		{name: "opaque", match: matchOpaque, build: buildRawOuter},
		{name: "heading", match: matchHeading, build: buildHeading},
		{name: "paragraph", match: matchParagraph, build: buildParagraph},
		{name: "image", match: matchImage, build: buildImage},
		{name: "linked-image", match: matchLinkedImage, build: buildLinkedImage},
		{name: "button", match: matchButton, build: buildButton},
		{name: "divider", match: matchDivider, build: buildDivider},
		{name: "spacer", match: matchSpacer, build: buildSpacer},
		{name: "columns", match: matchColumns, build: buildColumns},
		{name: "transparent-wrapper", match: matchWrapper, build: buildWrapper},
		{name: "text-node", match: matchTextNode, build: buildTextNode},
		{name: "raw", match: matchAny, build: buildRawOuter},
	}
}

func element(t document.ElementType, settings document.Settings, children ...*document.ElementNode) []*document.ElementNode {
	return []*document.ElementNode{document.NewElement(t, settings, children...)}
}

// lift copies a style property into settings when present
func lift(settings document.Settings, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if strings.TrimSpace(v) == "" {
			return
		}
	}
	settings[key] = value
}

func matchRawMarker(n *html.Node) bool {
	return n.Type == html.ElementNode && hasClass(n, rawMarkerClass)
}

func buildRawMarker(_ *Importer, n *html.Node) []*document.ElementNode {
	return element(document.TypeRawHTML, document.Settings{"html": renderInner(n)})
}

func matchOpaque(n *html.Node) bool {
	return n.Type == html.ElementNode && opaqueElements[n.DataAtom]
}

func buildRawOuter(_ *Importer, n *html.Node) []*document.ElementNode {
	return element(document.TypeRawHTML, document.Settings{"html": renderOuter(n)})
}

func matchHeading(n *html.Node) bool {
	_, ok := headingLevels[n.DataAtom]
	return n.Type == html.ElementNode && ok
}

// liftTypography reads the text styling shared by headings and paragraphs
func liftTypography(settings document.Settings, s inlineStyle) {
	lift(settings, "color", s.get("color"))
	lift(settings, "fontSize", liftLength(s.get("font-size")))
	lift(settings, "fontWeight", s.get("font-weight"))
	lift(settings, "fontFamily", s.get("font-family"))
	lift(settings, "align", s.get("text-align"))
	lift(settings, "padding", liftLength(s.get("padding")))
}

func buildHeading(_ *Importer, n *html.Node) []*document.ElementNode {
	settings := document.Settings{
		"text":  textContent(n),
		"level": headingLevels[n.DataAtom],
	}
	liftTypography(settings, styleOf(n))
	return element(document.TypeHeading, settings)
}

func matchParagraph(n *html.Node) bool {
	return isElement(n, atom.P)
}

func buildParagraph(_ *Importer, n *html.Node) []*document.ElementNode {
	s := styleOf(n)
	settings := document.Settings{"content": textWithBreaks(n)}
	liftTypography(settings, s)
	delete(settings, "fontWeight")
	lift(settings, "lineHeight", liftNumber(s.get("line-height")))
	return element(document.TypeText, settings)
}

func matchImage(n *html.Node) bool {
	return isElement(n, atom.Img)
}

func imageSettings(img *html.Node) document.Settings {
	s := styleOf(img)
	settings := document.Settings{
		"src": getAttr(img, "src"),
		"alt": getAttr(img, "alt"),
	}
	if w := s.get("width"); w != "" {
		lift(settings, "width", liftLength(w))
	} else {
		lift(settings, "width", liftLength(getAttr(img, "width")))
	}
	lift(settings, "align", alignFromMargin(s))
	return settings
}

func buildImage(_ *Importer, n *html.Node) []*document.ElementNode {
	return element(document.TypeImage, imageSettings(n))
}

// onlyImage returns the single img of an anchor that holds nothing else
func onlyImage(n *html.Node) *html.Node {
	if !isElement(n, atom.A) || hasSignificantText(n) {
		return nil
	}
	children := elementChildren(n)
	if len(children) != 1 || !isElement(children[0], atom.Img) {
		return nil
	}
	return children[0]
}

func matchLinkedImage(n *html.Node) bool {
	return onlyImage(n) != nil
}

func buildLinkedImage(_ *Importer, n *html.Node) []*document.ElementNode {
	settings := imageSettings(onlyImage(n))
	lift(settings, "href", getAttr(n, "href"))
	return element(document.TypeImage, settings)
}

func matchButton(n *html.Node) bool {
	if !isElement(n, atom.A) {
		return false
	}
	s := styleOf(n)
	return s.has("background-color") || s.has("background") || s.has("padding")
}

func buildButton(_ *Importer, n *html.Node) []*document.ElementNode {
	s := styleOf(n)
	settings := document.Settings{"label": textContent(n)}
	lift(settings, "href", getAttr(n, "href"))
	bg := s.get("background-color")
	if bg == "" && !strings.Contains(s.get("background"), " ") {
		bg = s.get("background")
	}
	lift(settings, "backgroundColor", bg)
	lift(settings, "textColor", s.get("color"))
	lift(settings, "fontSize", liftLength(s.get("font-size")))
	lift(settings, "fontWeight", s.get("font-weight"))
	lift(settings, "padding", liftLength(s.get("padding")))
	lift(settings, "borderRadius", liftLength(s.get("border-radius")))
	lift(settings, "align", s.get("text-align"))
	return element(document.TypeButton, settings)
}

func matchDivider(n *html.Node) bool {
	return isElement(n, atom.Hr)
}

func buildDivider(_ *Importer, n *html.Node) []*document.ElementNode {
	s := styleOf(n)
	border := s.get("border-top")
	if border == "" {
		if b := s.get("border"); b != "" && b != "0" && !strings.EqualFold(b, "none") {
			border = b
		}
	}
	width, style, color := borderParts(border)
	if v := s.get("border-top-width"); v != "" {
		width = v
	}
	if v := s.get("border-top-style"); v != "" {
		style = strings.ToLower(v)
	}
	if v := s.get("border-top-color"); v != "" {
		color = v
	}

	settings := document.Settings{}
	lift(settings, "thickness", liftLength(width))
	lift(settings, "style", style)
	lift(settings, "color", color)
	lift(settings, "margin", liftLength(s.get("margin")))
	return element(document.TypeDivider, settings)
}

func matchSpacer(n *html.Node) bool {
	if !isBlock(n) || len(elementChildren(n)) > 0 || hasSignificantText(n) {
		return false
	}
	return styleOf(n).get("height") != ""
}

func buildSpacer(_ *Importer, n *html.Node) []*document.ElementNode {
	return element(document.TypeSpacer, document.Settings{
		"height": liftLength(styleOf(n).get("height")),
	})
}

func matchColumns(n *html.Node) bool {
	if !isBlock(n) || hasSignificantText(n) {
		return false
	}
	s := styleOf(n)
	display := strings.ToLower(s.get("display"))
	if display != "flex" && display != "inline-flex" {
		return false
	}
	count := len(elementChildren(n))
	return count >= 1 && count <= 4
}

func buildColumns(imp *Importer, n *html.Node) []*document.ElementNode {
	s := styleOf(n)
	children := elementChildren(n)
	t, _ := document.ColumnsTypeFor(len(children))

	settings := document.Settings{}
	lift(settings, "gap", liftLength(s.get("gap")))
	lift(settings, "padding", liftLength(s.get("padding")))
	lift(settings, "backgroundColor", s.get("background-color"))
	if strings.EqualFold(s.get("flex-direction"), "column") {
		settings["stackOnMobile"] = true
	}

	columns := make([]*document.ElementNode, 0, len(children))
	for _, child := range children {
		columns = append(columns, imp.buildColumn(child))
	}
	return element(t, settings, columns...)
}

// buildColumn turns one flex item into a column. Generic blocks donate their
// styling and children; anything else becomes the column's only content.
func (imp *Importer) buildColumn(n *html.Node) *document.ElementNode {
	settings := document.Settings{}
	if !isBlock(n) {
		return document.NewElement(document.TypeColumn, settings, imp.classify(n)...)
	}
	s := styleOf(n)
	lift(settings, "padding", liftLength(s.get("padding")))
	lift(settings, "backgroundColor", s.get("background-color"))
	if align, ok := elements.VerticalAlignFromFlex(s.get("align-self")); ok {
		settings["verticalAlign"] = align
	}
	return document.NewElement(document.TypeColumn, settings, imp.classifyChildren(n)...)
}

func matchWrapper(n *html.Node) bool {
	return isBlock(n) && len(significantChildren(n)) == 1
}

func buildWrapper(imp *Importer, n *html.Node) []*document.ElementNode {
	nodes := imp.classify(significantChildren(n)[0])
	align := styleOf(n).get("text-align")
	if align == "" || len(nodes) != 1 {
		return nodes
	}
	child := nodes[0]
	def, ok := imp.registry.Get(child.Type)
	if !ok {
		return nodes
	}
	if _, hasAlign := def.Control("align"); hasAlign {
		if _, set := child.Settings["align"]; !set {
			child.Settings["align"] = strings.ToLower(align)
		}
	}
	return nodes
}

func matchTextNode(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) != ""
}

func buildTextNode(_ *Importer, n *html.Node) []*document.ElementNode {
	return element(document.TypeText, document.Settings{"content": collapseSpace(n.Data)})
}

func matchAny(n *html.Node) bool {
	return n.Type == html.ElementNode
}
