package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

func TestInstrumentInjectsIntoRoot(t *testing.T) {
	html, err := instrument(`<p style="x">Hi</p>`, rendering.Frame{ID: "a", Type: "text", Label: "Text"})
	require.NoError(t, err)

	assert.Regexp(t, `^<p style="x" data-bb-id="a" data-bb-type="text"><span class="bb-toolbar"`, html)
	assert.Contains(t, html, `<span class="bb-toolbar-label">Text</span>`)
	assert.Contains(t, html, `Hi</p>`)
	assert.NotContains(t, html, AttrSelected)
}

func TestInstrumentWrapsVoidAndBareFragments(t *testing.T) {
	cases := map[string]string{
		"void root":  `<hr style="border:0">`,
		"text only":  `plain`,
		"empty":      ``,
		"image root": `<img src="a.png">`,
	}
	for name, fragment := range cases {
		t.Run(name, func(t *testing.T) {
			html, err := instrument(fragment, rendering.Frame{ID: "a", Type: "divider", Selected: true})
			require.NoError(t, err)
			assert.Regexp(t, `^<div class="bb-frame" data-bb-id="a" data-bb-type="divider" data-bb-selected="true">`, html)
			assert.Regexp(t, fragment+`</div>$`, html)
		})
	}
}

func TestRootOpeningTag(t *testing.T) {
	tag, end, ok := rootOpeningTag(`<DIV class="a">x</DIV>`)
	require.True(t, ok)
	assert.Equal(t, "div", tag)
	assert.Equal(t, 14, end)

	_, _, ok = rootOpeningTag(`<!-- c --><p></p>`)
	assert.False(t, ok)
	_, _, ok = rootOpeningTag(`text`)
	assert.False(t, ok)
}
