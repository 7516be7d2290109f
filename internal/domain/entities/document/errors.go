package document

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Structural errors. A mutation failing with one of these leaves the tree unchanged.
var (
	ErrNodeNotFound    = errors.New("element not found")
	ErrNotContainer    = errors.New("target is not a container")
	ErrChildNotAllowed = errors.New("element type not allowed in target")
	ErrCycle           = errors.New("element cannot be moved into itself or a descendant")
	ErrDuplicateID     = errors.New("element id already present in tree")
)

// Schema errors.
var (
	ErrInvalidResponsive = errors.New("invalid responsive value")
	ErrUnknownType       = errors.New("unknown element type")
)

// IsStructural reports whether err is a structural rejection of a tree operation
func IsStructural(err error) bool {
	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrNotContainer) ||
		errors.Is(err, ErrChildNotAllowed) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrDuplicateID)
}

// SchemaError reports every violation found while decoding a serialized document
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	violations := multierr.Errors(e.Err)
	if len(violations) == 1 {
		return "invalid document: " + violations[0].Error()
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.Error()
	}
	return fmt.Sprintf("invalid document: %d violations: %s", len(violations), strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() []error { return multierr.Errors(e.Err) }

// Violations returns the individual schema violations
func (e *SchemaError) Violations() []error { return multierr.Errors(e.Err) }

// RegistryError reports element types a renderer could not resolve. It signals a
// stale or corrupt document rather than a bad user action.
type RegistryError struct {
	ElementID string
	Type      ElementType
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("element %s: %v %q", e.ElementID, ErrUnknownType, e.Type)
}

func (e *RegistryError) Unwrap() error { return ErrUnknownType }
