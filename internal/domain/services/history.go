package services

import "github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"

// DefaultHistoryLimit caps the undo stack when no limit is configured
const DefaultHistoryLimit = 100

// History keeps past and future tree snapshots. Snapshots are immutable, so
// storing the slices themselves is enough.
type History struct {
	past   []document.Tree
	future []document.Tree
	limit  int
}

// NewHistory creates a history keeping at most limit undo steps
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record pushes the tree as it was before a mutation and drops the redo stack
func (h *History) Record(prev document.Tree) {
	h.past = append(h.past, prev)
	if len(h.past) > h.limit {
		h.past = append([]document.Tree(nil), h.past[len(h.past)-h.limit:]...)
	}
	h.future = nil
}

// Undo returns the previous snapshot, saving current for redo
func (h *History) Undo(current document.Tree) (document.Tree, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current)
	return prev, true
}

// Redo returns the next snapshot, saving current for undo
func (h *History) Redo(current document.Tree) (document.Tree, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of undo and redo steps available
func (h *History) Depth() (undo, redo int) {
	return len(h.past), len(h.future)
}

// Clear forgets every snapshot
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
