package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
)

func renderNothing(rendering.Element, *rendering.RenderContext) (string, error) { return "", nil }

func testDefinitions() []Definition {
	return []Definition{
		{Type: document.TypeText, Label: "Text", Category: CategoryBasic, DefaultSettings: document.Settings{"text": "Text"}, Render: renderNothing},
		{Type: document.TypeImage, Label: "Image", Category: CategoryMedia, Render: renderNothing},
		{Type: document.TypeTwoColumns, Label: "2 Columns", Category: CategoryLayout, IsContainer: true,
			AllowedChildren: []document.ElementType{document.TypeColumn},
			SlotType:        document.TypeColumn, SlotCount: 2, Render: renderNothing},
		{Type: document.TypeColumn, Label: "Column", Category: CategoryStructure, IsContainer: true, SlotOnly: true,
			AllowedChildren: []document.ElementType{document.TypeText, document.TypeImage}, Render: renderNothing},
	}
}

func TestNewRegistryRejectsBadDefinitions(t *testing.T) {
	_, err := NewRegistry(Definition{Type: document.TypeText})
	require.Error(t, err, "missing render")

	defs := testDefinitions()
	_, err = NewRegistry(append(defs, defs[0])...)
	require.Error(t, err, "duplicate type")

	_, err = NewRegistry(Definition{Type: document.TypeTwoColumns, IsContainer: true, SlotType: "nope", SlotCount: 2, Render: renderNothing})
	require.Error(t, err, "unknown slot type")
}

func TestRegistryLookups(t *testing.T) {
	r, err := NewRegistry(testDefinitions()...)
	require.NoError(t, err)

	assert.Len(t, r.List(), 4)
	assert.Equal(t, document.TypeText, r.List()[0].Type)
	assert.Equal(t, []Category{CategoryBasic, CategoryMedia, CategoryLayout, CategoryStructure}, r.Categories())
	assert.Len(t, r.ListByCategory(CategoryLayout), 1)

	assert.True(t, r.IsContainer(document.TypeTwoColumns))
	assert.False(t, r.IsContainer(document.TypeText))
	assert.True(t, r.AllowsChild(document.TypeTwoColumns, document.TypeColumn))
	assert.False(t, r.AllowsChild(document.TypeTwoColumns, document.TypeText))
	assert.True(t, r.AllowsChild(document.TypeColumn, document.TypeImage))
	assert.False(t, r.AllowsChild(document.TypeText, document.TypeText))
	assert.False(t, r.AllowsChild(document.TypeColumn, "unknown"))

	assert.True(t, r.AllowsAtRoot(document.TypeText))
	assert.False(t, r.AllowsAtRoot(document.TypeColumn))
	assert.False(t, r.AllowsAtRoot("unknown"))
}

func TestCreateDefaultElement(t *testing.T) {
	r, err := NewRegistry(testDefinitions()...)
	require.NoError(t, err)

	cols, err := r.CreateDefaultElement(document.TypeTwoColumns)
	require.NoError(t, err)
	require.Len(t, cols.Children, 2)
	for _, c := range cols.Children {
		assert.Equal(t, document.TypeColumn, c.Type)
		assert.Empty(t, c.Children)
		assert.NotEqual(t, cols.ID, c.ID)
	}
	assert.NotEqual(t, cols.Children[0].ID, cols.Children[1].ID)

	text, err := r.CreateDefaultElement(document.TypeText)
	require.NoError(t, err)
	text.Settings["text"] = "edited"
	def, _ := r.Get(document.TypeText)
	assert.Equal(t, "Text", def.DefaultSettings["text"], "defaults are copied, not shared")

	_, err = r.CreateDefaultElement("nope")
	require.ErrorIs(t, err, document.ErrUnknownType)
}

func TestDefinitionControl(t *testing.T) {
	lo, hi := Bounds(1, 6)
	def := Definition{Controls: []Control{{Key: "level", Kind: ControlNumber, Min: lo, Max: hi}}}
	c, ok := def.Control("level")
	require.True(t, ok)
	assert.Equal(t, 6.0, *c.Max)
	_, ok = def.Control("missing")
	assert.False(t, ok)
}
