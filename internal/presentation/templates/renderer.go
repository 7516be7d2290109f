// Package templates renders element trees into clean export markup and into
// instrumented markup for the editing surface.
package templates

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/rendering"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

var unknownTmpl = template.Must(template.New("unknown").Parse(
	`<div class="bb-unknown">Unknown element type &quot;{{.}}&quot;</div>`,
))

// Renderer walks an element tree and delegates each node to its widget
type Renderer struct {
	registry *widgets.Registry
	logger   *logging.ChanneledLogger
}

// NewRenderer creates a renderer bound to a registry
func NewRenderer(registry *widgets.Registry, logger *logging.ChanneledLogger) *Renderer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Renderer{registry: registry, logger: logger}
}

// Registry returns the registry this renderer resolves types against
func (r *Renderer) Registry() *widgets.Registry {
	return r.registry
}

// RenderTree renders top level nodes in order. In instrumented mode unknown
// types produce a placeholder and a *document.RegistryError; the markup is
// still complete in that case, see IsRegistryOnly.
func (r *Renderer) RenderTree(tree document.Tree, ctx *rendering.RenderContext) (string, error) {
	start := time.Now()
	html, err := r.renderNodes(tree, ctx)
	if err != nil && !IsRegistryOnly(err) {
		return "", err
	}
	r.logger.Render().Debug("Rendered tree",
		"mode", ctx.Mode,
		"viewport", ctx.Viewport,
		"nodes", tree.Count(),
		"bytes", len(html),
		"duration", time.Since(start))
	return html, err
}

// RenderNode renders one node and its subtree
func (r *Renderer) RenderNode(node *document.ElementNode, ctx *rendering.RenderContext) (string, error) {
	def, ok := r.registry.Get(node.Type)
	if !ok {
		return r.renderUnknown(node, ctx)
	}

	var errs error
	var children []string
	if def.IsContainer {
		for _, child := range node.Children {
			html, err := r.RenderNode(child, ctx)
			if err != nil && !IsRegistryOnly(err) {
				return "", err
			}
			errs = multierr.Append(errs, err)
			children = append(children, html)
		}
	}

	el := rendering.Element{
		ID:       node.ID,
		Type:     node.Type,
		Props:    node.Settings.ResolveAll(ctx.Viewport),
		Children: children,
	}
	html, err := def.Render(el, ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render %s %s: %w", node.Type, node.ID, err)
	}

	if ctx.Instrumented() {
		html, err = instrument(html, rendering.Frame{
			ID:          node.ID,
			Type:        node.Type,
			Label:       def.Label,
			IsContainer: def.IsContainer,
			Selected:    ctx.SelectedID != "" && ctx.SelectedID == node.ID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to instrument %s %s: %w", node.Type, node.ID, err)
		}
	}
	return html, errs
}

func (r *Renderer) renderNodes(nodes []*document.ElementNode, ctx *rendering.RenderContext) (string, error) {
	var sb strings.Builder
	var errs error
	for _, node := range nodes {
		html, err := r.RenderNode(node, ctx)
		if err != nil && !IsRegistryOnly(err) {
			return "", err
		}
		errs = multierr.Append(errs, err)
		sb.WriteString(html)
	}
	return sb.String(), errs
}

func (r *Renderer) renderUnknown(node *document.ElementNode, ctx *rendering.RenderContext) (string, error) {
	regErr := &document.RegistryError{ElementID: node.ID, Type: node.Type}
	if !ctx.Instrumented() {
		r.logger.Render().Warn("Skipping element with unknown type",
			"elementId", node.ID, "type", node.Type)
		return "", nil
	}

	var sb strings.Builder
	if err := unknownTmpl.Execute(&sb, string(node.Type)); err != nil {
		return "", fmt.Errorf("failed to render unknown placeholder: %w", err)
	}
	html, err := instrument(sb.String(), rendering.Frame{
		ID:       node.ID,
		Type:     node.Type,
		Label:    string(node.Type),
		Selected: ctx.SelectedID != "" && ctx.SelectedID == node.ID,
		Unknown:  true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to instrument unknown element %s: %w", node.ID, err)
	}
	return html, regErr
}

// IsRegistryOnly reports whether err consists solely of registry errors,
// meaning the accompanying markup is usable.
func IsRegistryOnly(err error) bool {
	if err == nil {
		return true
	}
	for _, e := range multierr.Errors(err) {
		var regErr *document.RegistryError
		if !errors.As(e, &regErr) {
			return false
		}
	}
	return true
}
