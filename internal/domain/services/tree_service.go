// Package services provides the pure tree operations behind every editor
// mutation: insert, update, delete, duplicate and move, plus history and
// drop-zone resolution.
package services

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
)

// TreeService applies structural operations to tree snapshots. Every method
// returns a new tree; on error the input tree is returned unchanged.
type TreeService struct {
	registry *widgets.Registry
}

// NewTreeService creates a tree service validating against registry
func NewTreeService(registry *widgets.Registry) *TreeService {
	return &TreeService{registry: registry}
}

// canPlace checks that a node of type child may live under parentID
func (s *TreeService) canPlace(tree document.Tree, parentID string, child document.ElementType) error {
	if parentID == document.RootID {
		if !s.registry.AllowsAtRoot(child) {
			return fmt.Errorf("%w: %s at top level", document.ErrChildNotAllowed, child)
		}
		return nil
	}
	parent, ok := tree.Find(parentID)
	if !ok {
		return fmt.Errorf("%w: %s", document.ErrNodeNotFound, parentID)
	}
	if !s.registry.IsContainer(parent.Type) {
		return fmt.Errorf("%w: %s (%s)", document.ErrNotContainer, parentID, parent.Type)
	}
	if !s.registry.AllowsChild(parent.Type, child) {
		return fmt.Errorf("%w: %s in %s", document.ErrChildNotAllowed, child, parent.Type)
	}
	return nil
}

// slotOnly reports whether t only exists as a fixed slot of its container
func (s *TreeService) slotOnly(t document.ElementType) bool {
	def, ok := s.registry.Get(t)
	return ok && def.SlotOnly
}

// Insert places node under parentID at index. AppendIndex or an out of range
// index appends. The subtree must not reuse ids already in the tree, and
// every setting in it must be storable.
func (s *TreeService) Insert(tree document.Tree, parentID string, node *document.ElementNode, index int) (document.Tree, error) {
	if node == nil {
		return tree, fmt.Errorf("%w: nil node", document.ErrNodeNotFound)
	}
	if err := s.canPlace(tree, parentID, node.Type); err != nil {
		return tree, err
	}
	if s.slotOnly(node.Type) {
		return tree, fmt.Errorf("%w: %s is a slot of its container", document.ErrChildNotAllowed, node.Type)
	}

	existing := tree.IDs()
	seen := make(map[string]struct{})
	var dupErr error
	node.Walk(func(n, _ *document.ElementNode, _ int) bool {
		if _, ok := existing[n.ID]; ok {
			dupErr = fmt.Errorf("%w: %s", document.ErrDuplicateID, n.ID)
		} else if _, ok := seen[n.ID]; ok {
			dupErr = fmt.Errorf("%w: %s repeated in inserted subtree", document.ErrDuplicateID, n.ID)
		} else if n.ID == "" {
			dupErr = fmt.Errorf("%w: empty id", document.ErrDuplicateID)
		}
		seen[n.ID] = struct{}{}
		return dupErr == nil
	})
	if dupErr != nil {
		return tree, dupErr
	}
	if err := s.validateSubtree(node); err != nil {
		return tree, err
	}
	if err := validateSettings(node); err != nil {
		return tree, err
	}

	siblings, err := tree.Children(parentID)
	if err != nil {
		return tree, err
	}
	out, err := tree.WithChildren(parentID, document.InsertAt(siblings, node, index))
	if err != nil {
		return tree, err
	}
	return out, nil
}

// validateSubtree checks containment inside a subtree about to be inserted
func (s *TreeService) validateSubtree(node *document.ElementNode) error {
	var err error
	node.Walk(func(n, parent *document.ElementNode, _ int) bool {
		switch {
		case len(n.Children) > 0 && !s.registry.IsContainer(n.Type):
			err = fmt.Errorf("%w: %s (%s)", document.ErrNotContainer, n.ID, n.Type)
		case parent != nil && !s.registry.AllowsChild(parent.Type, n.Type):
			err = fmt.Errorf("%w: %s in %s", document.ErrChildNotAllowed, n.Type, parent.Type)
		default:
			err = s.checkSlots(n)
		}
		return err == nil
	})
	return err
}

// checkSlots verifies that a slotted container holds exactly its slot count
func (s *TreeService) checkSlots(n *document.ElementNode) error {
	def, ok := s.registry.Get(n.Type)
	if !ok || def.SlotCount == 0 || len(n.Children) == def.SlotCount {
		return nil
	}
	return fmt.Errorf("%w: %s (%s) has %d slots, want %d",
		document.ErrChildNotAllowed, n.ID, n.Type, len(n.Children), def.SlotCount)
}

// validateSettings collects every unstorable setting in the subtree
func validateSettings(node *document.ElementNode) error {
	var errs error
	node.Walk(func(n, _ *document.ElementNode, _ int) bool {
		if err := n.Settings.Validate(); err != nil {
			for _, violation := range multierr.Errors(err) {
				errs = multierr.Append(errs, fmt.Errorf("element %s: %w", n.ID, violation))
			}
		}
		return true
	})
	if errs != nil {
		return &document.SchemaError{Err: errs}
	}
	return nil
}

// Update merges partial into the settings of id. A nil value removes a key.
func (s *TreeService) Update(tree document.Tree, id string, partial map[string]any) (document.Tree, error) {
	node, ok := tree.Find(id)
	if !ok {
		return tree, fmt.Errorf("%w: %s", document.ErrNodeNotFound, id)
	}
	merged, err := node.Settings.Merge(partial)
	if err != nil {
		return tree, fmt.Errorf("failed to update settings of %s: %w", id, err)
	}
	updated := &document.ElementNode{ID: node.ID, Type: node.Type, Settings: merged, Children: node.Children}
	return tree.WithNode(updated)
}

// Delete removes id and its subtree. Slots cannot be removed from their
// container.
func (s *TreeService) Delete(tree document.Tree, id string) (document.Tree, error) {
	parentID, index, ok := tree.Locate(id)
	if !ok {
		return tree, fmt.Errorf("%w: %s", document.ErrNodeNotFound, id)
	}
	if node, _ := tree.Find(id); s.slotOnly(node.Type) {
		return tree, fmt.Errorf("%w: %s is a slot of its container", document.ErrChildNotAllowed, id)
	}
	return s.remove(tree, parentID, index)
}

func (s *TreeService) remove(tree document.Tree, parentID string, index int) (document.Tree, error) {
	siblings, err := tree.Children(parentID)
	if err != nil {
		return tree, err
	}
	return tree.WithChildren(parentID, document.RemoveAt(siblings, index))
}

// Duplicate inserts a deep copy of id with fresh ids right after the original
func (s *TreeService) Duplicate(tree document.Tree, id string) (document.Tree, string, error) {
	node, ok := tree.Find(id)
	if !ok {
		return tree, "", fmt.Errorf("%w: %s", document.ErrNodeNotFound, id)
	}
	parentID, index, _ := tree.Locate(id)
	clone := node.CloneWithNewIDs()
	out, err := s.Insert(tree, parentID, clone, index+1)
	if err != nil {
		return tree, "", err
	}
	return out, clone.ID, nil
}

// Move detaches id and reinserts it under newParentID at index. The index is
// read against the sibling list before removal, so a move further down the
// same parent lands where the caller pointed. Slots may only be reordered
// within their container.
func (s *TreeService) Move(tree document.Tree, id, newParentID string, index int) (document.Tree, error) {
	node, ok := tree.Find(id)
	if !ok {
		return tree, fmt.Errorf("%w: %s", document.ErrNodeNotFound, id)
	}
	if newParentID == id || (newParentID != document.RootID && tree.IsDescendant(id, newParentID)) {
		return tree, fmt.Errorf("%w: %s into %s", document.ErrCycle, id, newParentID)
	}
	if err := s.canPlace(tree, newParentID, node.Type); err != nil {
		return tree, err
	}

	oldParentID, oldIndex, _ := tree.Locate(id)
	if s.slotOnly(node.Type) && oldParentID != newParentID {
		return tree, fmt.Errorf("%w: %s is a slot of its container", document.ErrChildNotAllowed, id)
	}
	if oldParentID == newParentID && index >= 0 && oldIndex < index {
		index--
	}

	removed, err := s.remove(tree, oldParentID, oldIndex)
	if err != nil {
		return tree, err
	}
	siblings, err := removed.Children(newParentID)
	if err != nil {
		return tree, err
	}
	out, err := removed.WithChildren(newParentID, document.InsertAt(siblings, node, index))
	if err != nil {
		return tree, err
	}
	return out, nil
}

// Validate checks the structural invariants of a whole tree: unique non-empty
// ids, known types, containment rules and slot counts. It reports the first
// violation.
func (s *TreeService) Validate(tree document.Tree) error {
	seen := make(map[string]struct{})
	var firstErr error
	check := func(n *document.ElementNode, parentType document.ElementType, top bool) {
		if firstErr != nil {
			return
		}
		_, dup := seen[n.ID]
		switch {
		case n.ID == "":
			firstErr = fmt.Errorf("%w: empty id", document.ErrDuplicateID)
		case dup:
			firstErr = fmt.Errorf("%w: %s", document.ErrDuplicateID, n.ID)
		case top && !s.registry.AllowsAtRoot(n.Type):
			firstErr = fmt.Errorf("%w: %s at top level", document.ErrChildNotAllowed, n.Type)
		case !top && !s.registry.AllowsChild(parentType, n.Type):
			firstErr = fmt.Errorf("%w: %s in %s", document.ErrChildNotAllowed, n.Type, parentType)
		case len(n.Children) > 0 && !s.registry.IsContainer(n.Type):
			firstErr = fmt.Errorf("%w: %s", document.ErrNotContainer, n.ID)
		default:
			firstErr = s.checkSlots(n)
		}
		seen[n.ID] = struct{}{}
	}
	tree.Walk(func(n, parent *document.ElementNode, _ int) bool {
		if parent == nil {
			check(n, "", true)
		} else {
			check(n, parent.Type, false)
		}
		return firstErr == nil
	})
	return firstErr
}
