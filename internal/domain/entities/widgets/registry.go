package widgets

import (
	"fmt"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

// Registry is the read-only catalog of widget definitions
type Registry struct {
	order       []document.ElementType
	definitions map[document.ElementType]*Definition
}

// NewRegistry builds a registry, keeping the given order for List
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{definitions: make(map[document.ElementType]*Definition, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.Type == "" {
			return nil, fmt.Errorf("widget definition %d has no type", i)
		}
		if _, exists := r.definitions[def.Type]; exists {
			return nil, fmt.Errorf("duplicate widget definition for %q", def.Type)
		}
		if def.Render == nil {
			return nil, fmt.Errorf("widget %q has no render function", def.Type)
		}
		if def.SlotCount > 0 && (def.SlotType == "" || !def.IsContainer) {
			return nil, fmt.Errorf("widget %q declares slots but is not a container with a slot type", def.Type)
		}
		if def.DefaultSettings == nil {
			def.DefaultSettings = document.Settings{}
		}
		r.definitions[def.Type] = &def
		r.order = append(r.order, def.Type)
	}
	for _, def := range r.definitions {
		if def.SlotType != "" {
			if _, ok := r.definitions[def.SlotType]; !ok {
				return nil, fmt.Errorf("widget %q uses unknown slot type %q", def.Type, def.SlotType)
			}
		}
	}
	return r, nil
}

// Get returns the definition of t
func (r *Registry) Get(t document.ElementType) (*Definition, bool) {
	def, ok := r.definitions[t]
	return def, ok
}

// List returns every definition in catalog order
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.definitions[t])
	}
	return out
}

// ListByCategory returns the definitions of one category in catalog order
func (r *Registry) ListByCategory(c Category) []*Definition {
	var out []*Definition
	for _, t := range r.order {
		if def := r.definitions[t]; def.Category == c {
			out = append(out, def)
		}
	}
	return out
}

// Categories returns the categories in order of first appearance
func (r *Registry) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, t := range r.order {
		c := r.definitions[t].Category
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// IsContainer reports whether nodes of type t may carry children
func (r *Registry) IsContainer(t document.ElementType) bool {
	def, ok := r.definitions[t]
	return ok && def.IsContainer
}

// AllowsChild reports whether child may be placed under a parent of type parent
func (r *Registry) AllowsChild(parent, child document.ElementType) bool {
	def, ok := r.definitions[parent]
	if !ok {
		return false
	}
	if _, known := r.definitions[child]; !known {
		return false
	}
	return def.Allows(child)
}

// AllowsAtRoot reports whether t may be a top level node
func (r *Registry) AllowsAtRoot(t document.ElementType) bool {
	def, ok := r.definitions[t]
	return ok && !def.SlotOnly
}

// CreateDefaultElement instantiates t with a fresh id and a copy of its default
// settings. Containers get their declared number of empty slot children.
func (r *Registry) CreateDefaultElement(t document.ElementType) (*document.ElementNode, error) {
	def, ok := r.definitions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", document.ErrUnknownType, t)
	}
	node := document.NewElement(t, def.DefaultSettings.Clone())
	for i := 0; i < def.SlotCount; i++ {
		slot, err := r.CreateDefaultElement(def.SlotType)
		if err != nil {
			return nil, fmt.Errorf("failed to create slot %d of %q: %w", i, t, err)
		}
		node.Children = append(node.Children, slot)
	}
	return node, nil
}
