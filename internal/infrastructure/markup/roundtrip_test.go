package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates"
)

// exportParsed imports markup and exports the result again
func exportParsed(t *testing.T, markup string) string {
	return exportParsedAt(t, markup, document.ViewportDesktop)
}

// exportParsedAt is exportParsed for a given viewport
func exportParsedAt(t *testing.T, markup string, vp document.Viewport) string {
	t.Helper()
	res := newImporter().ParseDocument(markup)
	styles := document.DefaultGlobalStyles(600)
	styles.Preheader = res.Preheader
	out, err := templates.ExportMarkup(res.Elements, styles, vp, templates.ExportOptions{Title: res.Title})
	require.NoError(t, err)
	return out
}

func TestRoundTripOfExportedDocument(t *testing.T) {
	styles := document.DefaultGlobalStyles(600)
	styles.Preheader = "Peek"
	e1, err := templates.ExportMarkup(sampleTree(), styles, document.ViewportDesktop, templates.ExportOptions{Title: "Newsletter"})
	require.NoError(t, err)

	e2 := exportParsed(t, e1)
	e3 := exportParsed(t, e2)
	assert.Equal(t, e2, e3)
	assert.Contains(t, e2, "<title>Newsletter</title>")
	assert.Contains(t, e2, "Peek")
}

func TestRoundTripPreservesStructure(t *testing.T) {
	tree := sampleTree()
	e1, err := templates.ExportMarkup(tree, document.DefaultGlobalStyles(600), document.ViewportDesktop, templates.ExportOptions{})
	require.NoError(t, err)

	nodes := newImporter().Parse(e1)
	require.Equal(t, typesOf(tree), typesOf(nodes))

	cols := nodes[6]
	require.Len(t, cols.Children, 2)
	assert.Equal(t, []document.ElementType{document.TypeText}, typesOf(cols.Children[0].Children))
	assert.Empty(t, cols.Children[1].Children)

	img := nodes[5].Settings
	assert.Equal(t, "https://a.test", img["href"])
	assert.Equal(t, "center", img["align"])
	assert.Equal(t, "Line one\nLine two", nodes[1].Settings["content"])
}

func TestRoundTripOfForeignMarkup(t *testing.T) {
	e1 := `<html><head><title>Promo</title></head><body>
		<div>
			<h2 style="color:navy">Big news</h2>
			<p>We have <b>bold</b> plans.</p>
			<div style="display:flex"><div><img src="a.png"></div><div><p>side</p></div><div></div></div>
			<table><tr><td>legacy</td></tr></table>
			<a href="https://x.test" style="padding:8px">Read more</a>
		</div>
	</body></html>`

	e2 := exportParsed(t, e1)
	e3 := exportParsed(t, e2)
	assert.Equal(t, e2, e3)
}

func TestRoundTripIsStableAtEveryViewport(t *testing.T) {
	responsive := document.Tree{
		document.NewElement(document.TypeHeading, document.Settings{
			"text":     "Sized per viewport",
			"fontSize": document.ResponsiveValue{document.ViewportDesktop: 32.0, document.ViewportTablet: 28.0, document.ViewportMobile: 22.0},
		}),
		document.NewElement(document.TypeTwoColumns, document.Settings{"gap": 16.0, "stackOnMobile": true},
			document.NewElement(document.TypeColumn, document.Settings{},
				document.NewElement(document.TypeText, document.Settings{"content": "left"}),
			),
			document.NewElement(document.TypeColumn, document.Settings{},
				document.NewElement(document.TypeText, document.Settings{"content": "right"}),
			),
		),
	}
	scripted := append(sampleTree(),
		document.NewElement(document.TypeRawHTML, document.Settings{"html": "<script>track('open')</script>"}),
		document.NewElement(document.TypeRawHTML, document.Settings{"html": "<style>.promo{color:red}</style>"}),
	)

	docs := map[string]document.Tree{
		"sample":     sampleTree(),
		"responsive": responsive,
		"scripted":   scripted,
	}
	viewports := []document.Viewport{document.ViewportDesktop, document.ViewportTablet, document.ViewportMobile}

	for name, tree := range docs {
		for _, vp := range viewports {
			t.Run(name+"/"+string(vp), func(t *testing.T) {
				e1, err := templates.ExportMarkup(tree, document.DefaultGlobalStyles(600), vp, templates.ExportOptions{Title: "Issue"})
				require.NoError(t, err)

				e2 := exportParsedAt(t, e1, vp)
				e3 := exportParsedAt(t, e2, vp)
				assert.Equal(t, e2, e3)
				if name == "scripted" {
					assert.Contains(t, e3, "<script>track('open')</script>")
					assert.Contains(t, e3, "<style>.promo{color:red}</style>")
				}
			})
		}
	}
}

func TestRoundTripKeepsLeadingScriptFragment(t *testing.T) {
	e2 := exportParsed(t, `<script>x()</script><p>hi</p>`)
	e3 := exportParsed(t, e2)
	assert.Equal(t, e2, e3)
	assert.Contains(t, e3, "<script>x()</script>")
	assert.Contains(t, e3, "hi")
}
