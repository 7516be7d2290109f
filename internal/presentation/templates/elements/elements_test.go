package elements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

func cleanContext(vp document.Viewport) *rendering.RenderContext {
	return rendering.NewRenderContext(vp, rendering.ModeClean, document.DefaultGlobalStyles(600))
}

func TestDefaultRegistryCatalog(t *testing.T) {
	reg := DefaultRegistry()
	assert.Len(t, reg.List(), 12)
	for _, def := range reg.List() {
		assert.NotEmpty(t, def.Label, def.Type)
		assert.NotNil(t, def.Render, def.Type)
	}
	assert.True(t, reg.AllowsChild(document.TypeColumn, document.TypeTwoColumns), "columns nest")
	assert.False(t, reg.AllowsChild(document.TypeColumn, document.TypeColumn))
	assert.False(t, reg.AllowsAtRoot(document.TypeColumn))
}

func TestRenderHeading(t *testing.T) {
	html, err := RenderHeading(rendering.Element{
		ID:   "h",
		Type: document.TypeHeading,
		Props: map[string]any{
			"text":     "Tom & Jerry",
			"level":    "H3",
			"fontSize": 28.0,
			"align":    "center",
			"color":    "red;background:url(x)",
		},
	}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)

	assert.Contains(t, html, "<h3 ")
	assert.Contains(t, html, "Tom &amp; Jerry</h3>")
	assert.Contains(t, html, "font-size:28px")
	assert.Contains(t, html, "text-align:center")
	assert.NotContains(t, html, "url(", "unsafe declarations are dropped")
}

func TestHeadingLevelFallsBack(t *testing.T) {
	assert.Equal(t, "h1", HeadingLevel(" h1 "))
	assert.Equal(t, DefaultHeadingLevel, HeadingLevel("h9"))
	assert.Equal(t, DefaultHeadingLevel, HeadingLevel(""))
}

func TestRenderTextEscapesAndBreaksLines(t *testing.T) {
	html, err := RenderText(rendering.Element{
		Props: map[string]any{"content": "a < b\r\nnext line", "lineHeight": 1.6},
	}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Contains(t, html, "a &lt; b<br>next line")
	assert.Contains(t, html, "line-height:1.6")
}

func TestRenderButtonAddsTracking(t *testing.T) {
	ctx := cleanContext(document.ViewportDesktop)
	ctx.LinkTracking = map[string]string{"utm_source": "newsletter"}

	html, err := RenderButton(rendering.Element{
		Props: map[string]any{"label": "Go", "href": "https://example.com/a", "align": "right"},
	}, ctx)
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://example.com/a?utm_source=newsletter"`)
	assert.Contains(t, html, "text-align:right")
	assert.Contains(t, html, ">Go</a>")
}

func TestTrackURL(t *testing.T) {
	params := map[string]string{"utm_source": "news", "utm_medium": "", "ref": "x"}

	assert.Equal(t, "https://a.test/p?utm_source=news", trackURL("https://a.test/p", params))
	assert.Equal(t, "https://a.test/p?utm_source=mine", trackURL("https://a.test/p?utm_source=mine", params), "existing values win")
	assert.Equal(t, "mailto:me@a.test", trackURL("mailto:me@a.test", params))
	assert.Equal(t, "/relative", trackURL("/relative", params))
	assert.Equal(t, "https://a.test", trackURL("https://a.test", nil))
}

func TestRenderImage(t *testing.T) {
	html, err := RenderImage(rendering.Element{
		Props: map[string]any{"src": "https://img.test/a.png", "alt": "A", "width": "300", "align": "right", "href": "https://a.test"},
	}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Contains(t, html, `<a href="https://a.test" target="_blank"><img src="https://img.test/a.png" alt="A"`)
	assert.Contains(t, html, "width:300px")
	assert.Contains(t, html, "margin:0 0 0 auto")

	html, err = RenderImage(rendering.Element{Props: map[string]any{"src": "javascript:alert(1)"}}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")
}

func TestRenderColumnsStacksOnMobile(t *testing.T) {
	el := rendering.Element{
		Props:    map[string]any{"gap": 16.0, "stackOnMobile": true},
		Children: []string{"<div>a</div>", "<div>b</div>"},
	}

	desktop, err := RenderColumns(el, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Contains(t, desktop, "display:flex")
	assert.NotContains(t, desktop, "flex-direction")
	assert.Contains(t, desktop, "<div>a</div><div>b</div>")

	mobile, err := RenderColumns(el, cleanContext(document.ViewportMobile))
	require.NoError(t, err)
	assert.Contains(t, mobile, "flex-direction:column")
}

func TestRenderColumnVerticalAlign(t *testing.T) {
	html, err := RenderColumn(rendering.Element{Props: map[string]any{"verticalAlign": "middle"}}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Contains(t, html, "align-self:center")

	for flex, want := range map[string]string{"flex-end": "bottom", "End": "bottom", "center": "middle", "start": "top"} {
		setting, ok := VerticalAlignFromFlex(flex)
		require.True(t, ok, flex)
		assert.Equal(t, want, setting, flex)
	}
	_, ok := VerticalAlignFromFlex("stretch")
	assert.False(t, ok)
}

func TestRenderDividerAndSpacer(t *testing.T) {
	html, err := RenderDivider(rendering.Element{
		Props: map[string]any{"thickness": 2.0, "style": "dashed", "color": "#ccc"},
	}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Contains(t, html, "border-top:2px dashed #ccc")

	html, err = RenderSpacer(rendering.Element{Props: map[string]any{}}, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Equal(t, `<div style="height:32px"></div>`, html)
}

func TestRenderRawHTML(t *testing.T) {
	el := rendering.Element{Props: map[string]any{"html": `<p onclick="x()">Hi</p><script>alert(1)</script>`}}

	html, err := RenderRawHTML(el, cleanContext(document.ViewportDesktop))
	require.NoError(t, err)
	assert.Equal(t, `<div class="bb-raw"><p onclick="x()">Hi</p><script>alert(1)</script></div>`, html)

	ctx := cleanContext(document.ViewportDesktop)
	ctx.SanitizeRawHTML = true
	html, err = RenderRawHTML(el, ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "<p>Hi</p>")
	assert.NotContains(t, html, "script")
	assert.NotContains(t, html, "onclick")
}
