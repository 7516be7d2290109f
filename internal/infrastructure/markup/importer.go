// Package markup converts arbitrary HTML back into element trees. Import is
// total: anything that cannot be recognized is kept verbatim as raw-html.
package markup

import (
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// Importer classifies markup into element nodes with an ordered rule list
type Importer struct {
	registry *widgets.Registry
	logger   *logging.ChanneledLogger
	rules    []rule
}

// Result is a parsed document: its elements plus the document level values
// found alongside them.
type Result struct {
	Elements  document.Tree
	Title     string
	Preheader string
}

// NewImporter creates an importer resolving widget capabilities via registry
func NewImporter(registry *widgets.Registry, logger *logging.ChanneledLogger) *Importer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Importer{
		registry: registry,
		logger:   logger,
		rules:    defaultRules(),
	}
}

// Parse converts markup into top level element nodes. Every node gets a
// fresh id; ids present in the markup are ignored.
func (imp *Importer) Parse(markup string) []*document.ElementNode {
	return imp.ParseDocument(markup).Elements
}

// ParseDocument is Parse plus the title and preheader of an exported document
func (imp *Importer) ParseDocument(markup string) Result {
	start := time.Now()
	var res Result
	if strings.TrimSpace(markup) == "" {
		res.Elements = document.Tree{}
		return res
	}

	doc, err := parseMarkup(markup)
	if err != nil {
		imp.logger.Import().Warn("Markup could not be parsed, keeping it verbatim", "error", err)
		res.Elements = document.Tree{document.NewElement(document.TypeRawHTML, document.Settings{"html": markup})}
		return res
	}

	stripped := removeMatching(doc, func(n *html.Node) bool {
		return hasAttr(n, editorAttr) || hasClass(n, unknownClass)
	})

	if title := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); title != nil {
		res.Title = textContent(title)
	}
	if pre := findFirst(doc, func(n *html.Node) bool { return hasClass(n, preheaderClass) }); pre != nil {
		res.Preheader = textContent(pre)
		pre.Parent.RemoveChild(pre)
	}

	root := locateRoot(doc)
	nodes := append(imp.headScripts(doc), imp.classifyChildren(root)...)
	if len(nodes) == 0 {
		nodes = []*document.ElementNode{
			document.NewElement(document.TypeRawHTML, document.Settings{"html": renderInner(root)}),
		}
	}
	res.Elements = document.Tree(nodes)

	imp.logger.Import().Debug("Imported markup",
		"bytes", len(markup),
		"root", root.Data,
		"nodes", res.Elements.Count(),
		"strippedAffordances", stripped,
		"duration", time.Since(start))
	return res
}

// parseMarkup parses complete documents as they are. Fragments are parsed in
// a body context so that leading script and style elements stay in the
// content instead of being hoisted into head.
func parseMarkup(markup string) (*html.Node, error) {
	if isFullDocument(markup) {
		return html.Parse(strings.NewReader(markup))
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	root := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	root.AppendChild(body)
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(root)
	return doc, nil
}

// isFullDocument reports whether the first tag of markup opens a document
// rather than content
func isFullDocument(markup string) bool {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html, atom.Head, atom.Body, atom.Title, atom.Meta, atom.Link, atom.Base:
				return true
			}
			return false
		}
	}
}

// headScripts keeps script elements of a document head as raw-html. Head
// styles belong to the document shell, which export regenerates.
func (imp *Importer) headScripts(doc *html.Node) []*document.ElementNode {
	head := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return nil
	}
	var out []*document.ElementNode
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Script {
			out = append(out, document.NewElement(document.TypeRawHTML, document.Settings{"html": renderOuter(c)}))
		}
	}
	return out
}

// classify runs the rule list against one DOM node
func (imp *Importer) classify(n *html.Node) []*document.ElementNode {
	if !isSignificant(n) {
		return nil
	}
	for _, r := range imp.rules {
		if r.match(n) {
			return r.build(imp, n)
		}
	}
	return nil
}

func (imp *Importer) classifyChildren(parent *html.Node) []*document.ElementNode {
	var out []*document.ElementNode
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, imp.classify(c)...)
	}
	return out
}

// ruleFor returns the name of the rule that would classify n; used in tests
// and debug logging.
func (imp *Importer) ruleFor(n *html.Node) string {
	if !isSignificant(n) {
		return ""
	}
	for _, r := range imp.rules {
		if r.match(n) {
			return r.name
		}
	}
	return ""
}

// locateRoot finds the element whose children are the document content: the
// export container, any container-like class, a semantic wrapper, a sole
// structural wrapper of body, or body itself.
func locateRoot(doc *html.Node) *html.Node {
	if n := findFirst(doc, func(n *html.Node) bool { return hasClass(n, containerClass) }); n != nil {
		return n
	}
	if n := findFirst(doc, func(n *html.Node) bool {
		return strings.Contains(strings.ToLower(getAttr(n, "class")), "container")
	}); n != nil {
		return n
	}
	if n := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Main || n.DataAtom == atom.Article
	}); n != nil {
		return n
	}

	body := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return doc
	}
	root := body
	for {
		children := significantChildren(root)
		if len(children) != 1 || !isStructuralWrapper(children[0]) {
			return root
		}
		root = children[0]
	}
}

// isStructuralWrapper reports whether n only groups several blocks, as
// opposed to being content in its own right.
func isStructuralWrapper(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Section, atom.Div:
	default:
		return false
	}
	if hasClass(n, rawMarkerClass) || hasSignificantText(n) {
		return false
	}
	display := strings.ToLower(styleOf(n).get("display"))
	if display == "flex" || display == "inline-flex" {
		return false
	}
	return len(elementChildren(n)) >= 2
}
