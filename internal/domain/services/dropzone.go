package services

import (
	"fmt"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

// DropPosition is where a dragged element lands relative to a target
type DropPosition string

const (
	DropBefore DropPosition = "before"
	DropAfter  DropPosition = "after"
	DropInside DropPosition = "inside"
)

// ParseDropPosition validates a position name
func ParseDropPosition(s string) (DropPosition, error) {
	switch p := DropPosition(s); p {
	case DropBefore, DropAfter, DropInside:
		return p, nil
	}
	return "", fmt.Errorf("invalid drop position %q", s)
}

// Axis is the direction along which the target's siblings are laid out
type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// Point is a pointer coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a target's bounding box
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// interiorBand is the fraction of the target, centered along the axis, that
// counts as inside for containers.
const interiorBand = 0.5

// ClassifyDrop maps a pointer over a target to before, after or inside. Only
// containers accept inside, and only when the pointer is within the middle
// band along the layout axis; otherwise the nearer half decides.
func ClassifyDrop(pointer Point, target Rect, isContainer bool, axis Axis) DropPosition {
	start, length, pos := target.Y, target.Height, pointer.Y
	if axis == AxisHorizontal {
		start, length, pos = target.X, target.Width, pointer.X
	}
	if length <= 0 {
		return DropAfter
	}
	offset := (pos - start) / length
	if isContainer {
		margin := (1 - interiorBand) / 2
		if offset >= margin && offset <= 1-margin {
			return DropInside
		}
	}
	if offset < 0.5 {
		return DropBefore
	}
	return DropAfter
}

// ResolveDrop turns a classified drop into the parent and index expected by
// Insert and Move. Inside appends to the target's children.
func ResolveDrop(tree document.Tree, targetID string, position DropPosition) (string, int, error) {
	if position == DropInside {
		if _, ok := tree.Find(targetID); !ok {
			return "", 0, fmt.Errorf("%w: %s", document.ErrNodeNotFound, targetID)
		}
		return targetID, document.AppendIndex, nil
	}
	parentID, index, ok := tree.Locate(targetID)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", document.ErrNodeNotFound, targetID)
	}
	switch position {
	case DropBefore:
		return parentID, index, nil
	case DropAfter:
		return parentID, index + 1, nil
	default:
		return "", 0, fmt.Errorf("invalid drop position %q", position)
	}
}
