package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

func sampleTree() document.Tree {
	return document.Tree{
		{ID: "h1", Type: document.TypeHeading, Settings: document.Settings{
			"text":     "Hello",
			"fontSize": document.ResponsiveValue{document.ViewportDesktop: 32.0, document.ViewportMobile: 22.0},
		}},
		{ID: "cols", Type: document.TypeTwoColumns, Settings: document.Settings{"stackOnMobile": true}, Children: []*document.ElementNode{
			{ID: "c1", Type: document.TypeColumn, Settings: document.Settings{}, Children: []*document.ElementNode{
				{ID: "b1", Type: document.TypeButton, Settings: document.Settings{"label": "Buy", "href": "https://shop.test"}},
			}},
			{ID: "c2", Type: document.TypeColumn, Settings: document.Settings{}},
		}},
	}
}

func TestExportProducesCleanDocument(t *testing.T) {
	styles := document.DefaultGlobalStyles(600)
	styles.Preheader = "Inbox teaser"

	html, err := ExportMarkup(sampleTree(), styles, document.ViewportDesktop, ExportOptions{Title: "Launch"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Launch</title>")
	assert.Contains(t, html, `<div class="bb-preheader">Inbox teaser</div>`)
	assert.Contains(t, html, `class="`+ContainerClass+`"`)
	assert.Contains(t, html, "max-width:600px")
	assert.Contains(t, html, "font-size:32px")
	assert.NotContains(t, html, "data-bb-", "export never carries editor metadata")
	assert.NotContains(t, html, "bb-toolbar")
}

func TestExportResolvesViewport(t *testing.T) {
	html, err := ExportMarkup(sampleTree(), document.DefaultGlobalStyles(600), document.ViewportMobile, ExportOptions{FragmentOnly: true})
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(html, "<!DOCTYPE"))
	assert.Contains(t, html, "font-size:22px")
	assert.Contains(t, html, "flex-direction:column")
}

func TestExportDefaultsTitleAndTracksLinks(t *testing.T) {
	html, err := ExportMarkup(sampleTree(), document.GlobalStyles{}, document.ViewportDesktop, ExportOptions{
		LinkTracking: map[string]string{"utm_campaign": "spring"},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Untitled</title>")
	assert.Contains(t, html, "https://shop.test?utm_campaign=spring")
}

func TestExportIsDeterministic(t *testing.T) {
	a, err := ExportMarkup(sampleTree(), document.DefaultGlobalStyles(600), document.ViewportDesktop, ExportOptions{})
	require.NoError(t, err)
	b, err := ExportMarkup(sampleTree(), document.DefaultGlobalStyles(600), document.ViewportDesktop, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExportSkipsUnknownTypes(t *testing.T) {
	tree := append(sampleTree(), &document.ElementNode{ID: "x", Type: "marquee", Settings: document.Settings{}})
	html, err := ExportMarkup(tree, document.DefaultGlobalStyles(600), document.ViewportDesktop, ExportOptions{FragmentOnly: true})
	require.NoError(t, err)
	assert.NotContains(t, html, "marquee")
}

func TestRenderForEditingInstrumentsEveryNode(t *testing.T) {
	html, err := RenderForEditing(sampleTree(), document.DefaultGlobalStyles(600), document.ViewportDesktop, "b1")
	require.NoError(t, err)

	for _, id := range []string{"h1", "cols", "c1", "c2", "b1"} {
		assert.Contains(t, html, AttrID+`="`+id+`"`, id)
	}
	assert.Equal(t, 1, strings.Count(html, AttrSelected+`="true">`))
	assert.Contains(t, html, `data-bb-id="cols" data-bb-type="two-columns" data-bb-container="true"`)
	assert.Contains(t, html, `data-bb-root="true"`)
	assert.Contains(t, html, "bb-toolbar")
}

func TestRenderForEditingReportsUnknownTypes(t *testing.T) {
	tree := append(sampleTree(), &document.ElementNode{ID: "x", Type: "marquee", Settings: document.Settings{}})
	html, err := RenderForEditing(tree, document.DefaultGlobalStyles(600), document.ViewportTablet, "")

	require.Error(t, err)
	assert.True(t, IsRegistryOnly(err))
	assert.ErrorIs(t, err, document.ErrUnknownType)
	assert.Contains(t, html, `data-bb-id="x"`)
	assert.Contains(t, html, "bb-unknown")
	assert.Contains(t, html, "max-width:768px", "tablet canvas width")
}
