package document

import "github.com/oklog/ulid/v2"

// ElementType is the closed set of widget type tags
type ElementType string

const (
	TypeHeading      ElementType = "heading"
	TypeText         ElementType = "text"
	TypeImage        ElementType = "image"
	TypeButton       ElementType = "button"
	TypeDivider      ElementType = "divider"
	TypeSpacer       ElementType = "spacer"
	TypeRawHTML      ElementType = "raw-html"
	TypeOneColumn    ElementType = "one-column"
	TypeTwoColumns   ElementType = "two-columns"
	TypeThreeColumns ElementType = "three-columns"
	TypeFourColumns  ElementType = "four-columns"
	TypeColumn       ElementType = "column"
)

// ColumnsTypeFor returns the n-column container type for n slots
func ColumnsTypeFor(n int) (ElementType, bool) {
	switch n {
	case 1:
		return TypeOneColumn, true
	case 2:
		return TypeTwoColumns, true
	case 3:
		return TypeThreeColumns, true
	case 4:
		return TypeFourColumns, true
	}
	return "", false
}

// ElementNode is one block of the document tree
type ElementNode struct {
	ID       string         `json:"id"`
	Type     ElementType    `json:"type"`
	Settings Settings       `json:"settings"`
	Children []*ElementNode `json:"children,omitempty"`
}

// NewID returns a fresh, never reused element id
func NewID() string {
	return ulid.Make().String()
}

// NewElement creates a node with a fresh id
func NewElement(t ElementType, settings Settings, children ...*ElementNode) *ElementNode {
	if settings == nil {
		settings = Settings{}
	}
	return &ElementNode{ID: NewID(), Type: t, Settings: settings, Children: children}
}

// Clone returns a deep copy keeping every id
func (n *ElementNode) Clone() *ElementNode {
	if n == nil {
		return nil
	}
	out := &ElementNode{ID: n.ID, Type: n.Type, Settings: n.Settings.Clone()}
	if len(n.Children) > 0 {
		out.Children = make([]*ElementNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// CloneWithNewIDs returns a deep copy where the node and all descendants get fresh ids
func (n *ElementNode) CloneWithNewIDs() *ElementNode {
	if n == nil {
		return nil
	}
	out := &ElementNode{ID: NewID(), Type: n.Type, Settings: n.Settings.Clone()}
	if len(n.Children) > 0 {
		out.Children = make([]*ElementNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.CloneWithNewIDs()
		}
	}
	return out
}

// withChildren returns a shallow copy of n carrying the given children
func (n *ElementNode) withChildren(children []*ElementNode) *ElementNode {
	return &ElementNode{ID: n.ID, Type: n.Type, Settings: n.Settings, Children: children}
}

// Walk visits n and its descendants depth first; returning false skips the subtree
func (n *ElementNode) Walk(fn func(node, parent *ElementNode, depth int) bool) {
	n.walk(nil, 0, fn)
}

func (n *ElementNode) walk(parent *ElementNode, depth int, fn func(node, parent *ElementNode, depth int) bool) {
	if !fn(n, parent, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(n, depth+1, fn)
	}
}

// Contains reports whether id is n or one of its descendants
func (n *ElementNode) Contains(id string) bool {
	found := false
	n.Walk(func(node, _ *ElementNode, _ int) bool {
		if node.ID == id {
			found = true
		}
		return !found
	})
	return found
}
