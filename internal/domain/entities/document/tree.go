package document

import "fmt"

const (
	// RootID addresses the top level sequence of the tree
	RootID = ""
	// AppendIndex inserts after the last sibling
	AppendIndex = -1
)

// Tree is the ordered sequence of top level nodes. A Tree value is a snapshot:
// operations return new trees and share untouched subtrees.
type Tree []*ElementNode

// Walk visits every node depth first; parent is nil for top level nodes
func (t Tree) Walk(fn func(node, parent *ElementNode, depth int) bool) {
	for _, n := range t {
		n.walk(nil, 0, fn)
	}
}

// Find returns the node with the given id
func (t Tree) Find(id string) (*ElementNode, bool) {
	var found *ElementNode
	t.Walk(func(node, _ *ElementNode, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found, found != nil
}

// Locate returns the parent id (RootID for top level) and sibling index of id
func (t Tree) Locate(id string) (parentID string, index int, ok bool) {
	for i, n := range t {
		if n.ID == id {
			return RootID, i, true
		}
	}
	t.Walk(func(node, _ *ElementNode, _ int) bool {
		if ok {
			return false
		}
		for i, c := range node.Children {
			if c.ID == id {
				parentID, index, ok = node.ID, i, true
				return false
			}
		}
		return true
	})
	return parentID, index, ok
}

// Children returns the child sequence addressed by parentID
func (t Tree) Children(parentID string) ([]*ElementNode, error) {
	if parentID == RootID {
		return t, nil
	}
	parent, ok := t.Find(parentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	return parent.Children, nil
}

// IDs returns the set of every id in the tree
func (t Tree) IDs() map[string]struct{} {
	ids := make(map[string]struct{})
	t.Walk(func(node, _ *ElementNode, _ int) bool {
		ids[node.ID] = struct{}{}
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree
func (t Tree) Count() int {
	n := 0
	t.Walk(func(*ElementNode, *ElementNode, int) bool {
		n++
		return true
	})
	return n
}

// IsDescendant reports whether id lies strictly below ancestorID
func (t Tree) IsDescendant(ancestorID, id string) bool {
	ancestor, ok := t.Find(ancestorID)
	if !ok || ancestorID == id {
		return false
	}
	for _, c := range ancestor.Children {
		if c.Contains(id) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy keeping ids
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for i, n := range t {
		out[i] = n.Clone()
	}
	return out
}

// WithChildren returns a new tree where the children of parentID are replaced.
// Only the nodes on the path from the root to parentID are copied.
func (t Tree) WithChildren(parentID string, children []*ElementNode) (Tree, error) {
	if parentID == RootID {
		return Tree(children), nil
	}
	out, ok := replaceIn(t, parentID, func(n *ElementNode) *ElementNode {
		return n.withChildren(children)
	})
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	return out, nil
}

// WithNode returns a new tree where the node with the same id as n is replaced by n
func (t Tree) WithNode(n *ElementNode) (Tree, error) {
	out, ok := replaceIn(t, n.ID, func(*ElementNode) *ElementNode { return n })
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrNodeNotFound, n.ID)
	}
	return out, nil
}

func replaceIn(nodes []*ElementNode, id string, fn func(*ElementNode) *ElementNode) ([]*ElementNode, bool) {
	for i, n := range nodes {
		if n.ID == id {
			out := make([]*ElementNode, len(nodes))
			copy(out, nodes)
			out[i] = fn(n)
			return out, true
		}
		if len(n.Children) == 0 {
			continue
		}
		if children, ok := replaceIn(n.Children, id, fn); ok {
			out := make([]*ElementNode, len(nodes))
			copy(out, nodes)
			out[i] = n.withChildren(children)
			return out, true
		}
	}
	return nodes, false
}

// InsertAt returns a copy of nodes with n placed at index; out of range appends
func InsertAt(nodes []*ElementNode, n *ElementNode, index int) []*ElementNode {
	if index < 0 || index > len(nodes) {
		index = len(nodes)
	}
	out := make([]*ElementNode, 0, len(nodes)+1)
	out = append(out, nodes[:index]...)
	out = append(out, n)
	out = append(out, nodes[index:]...)
	return out
}

// RemoveAt returns a copy of nodes without the element at index
func RemoveAt(nodes []*ElementNode, index int) []*ElementNode {
	out := make([]*ElementNode, 0, len(nodes))
	out = append(out, nodes[:index]...)
	return append(out, nodes[index+1:]...)
}
