package templates

import (
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/templates/elements"
)

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
{{if .Preheader}}<div class="bb-preheader">{{.Preheader}}</div>
{{end}}<div class="` + ContainerClass + `">{{.Content}}</div>
</body>
</html>
`))

var editingTmpl = template.Must(template.New("editing").Parse(
	`<style>{{.CSS}}</style><div class="bb-canvas bb-viewport-{{.Viewport}}" style="max-width:{{.Width}}px;margin:0 auto">` +
		`<div class="` + ContainerClass + `" data-bb-root="true">{{.Content}}</div></div>`,
))

type documentData struct {
	Title     string
	CSS       template.CSS
	Preheader string
	Content   template.HTML
}

type editingData struct {
	CSS      template.CSS
	Viewport document.Viewport
	Width    int
	Content  template.HTML
}

// viewportWidths is the canvas width of each viewport class on the editing surface
var viewportWidths = map[document.Viewport]int{
	document.ViewportMobile: 375,
	document.ViewportTablet: 768,
}

// ExportOptions tunes clean export
type ExportOptions struct {
	Title string
	// FragmentOnly skips the document shell and returns the content markup
	FragmentOnly    bool
	LinkTracking    map[string]string
	SanitizeRawHTML bool
}

// Export renders a complete standalone document without editor metadata
func (r *Renderer) Export(tree document.Tree, styles document.GlobalStyles, vp document.Viewport, opts ExportOptions) (string, error) {
	ctx := rendering.NewRenderContext(vp, rendering.ModeClean, styles)
	ctx.LinkTracking = opts.LinkTracking
	ctx.SanitizeRawHTML = opts.SanitizeRawHTML

	content, err := r.RenderTree(tree, ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render export content: %w", err)
	}
	if opts.FragmentOnly {
		return content, nil
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Untitled"
	}
	var sb strings.Builder
	err = documentTmpl.Execute(&sb, documentData{
		Title:     title,
		CSS:       BuildDocumentCSS(styles),
		Preheader: styles.Preheader,
		Content:   template.HTML(content),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute document template: %w", err)
	}
	return sb.String(), nil
}

// RenderForEditing renders instrumented markup for the editing surface. A
// non-nil error alongside markup means some nodes had unknown types.
func (r *Renderer) RenderForEditing(tree document.Tree, styles document.GlobalStyles, vp document.Viewport, selectedID string) (string, error) {
	ctx := rendering.NewRenderContext(vp, rendering.ModeInstrumented, styles)
	ctx.SelectedID = selectedID

	content, renderErr := r.RenderTree(tree, ctx)
	if renderErr != nil && !IsRegistryOnly(renderErr) {
		return "", fmt.Errorf("failed to render editing surface: %w", renderErr)
	}

	width, ok := viewportWidths[ctx.Viewport]
	if !ok {
		width = contentWidth(styles)
	}
	var sb strings.Builder
	err := editingTmpl.Execute(&sb, editingData{
		CSS:      BuildEditorCSS(styles),
		Viewport: ctx.Viewport,
		Width:    width,
		Content:  template.HTML(content),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute editing template: %w", err)
	}
	return sb.String(), renderErr
}

var (
	defaultRenderer     *Renderer
	defaultRendererOnce sync.Once
)

// DefaultRenderer returns a renderer over the built-in widget catalog
func DefaultRenderer() *Renderer {
	defaultRendererOnce.Do(func() {
		defaultRenderer = NewRenderer(elements.DefaultRegistry(), nil)
	})
	return defaultRenderer
}

// ExportMarkup renders tree as a standalone document with the built-in catalog
func ExportMarkup(tree document.Tree, styles document.GlobalStyles, vp document.Viewport, opts ExportOptions) (string, error) {
	return DefaultRenderer().Export(tree, styles, vp, opts)
}

// RenderForEditing renders tree as instrumented markup with the built-in catalog
func RenderForEditing(tree document.Tree, styles document.GlobalStyles, vp document.Viewport, selectedID string) (string, error) {
	return DefaultRenderer().RenderForEditing(tree, styles, vp, selectedID)
}
