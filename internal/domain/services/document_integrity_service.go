package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
)

// DocumentIntegrityService validates serialized documents before any of their
// nodes reach a live tree. Violations are collected, never repaired.
type DocumentIntegrityService struct {
	registry *widgets.Registry
}

func NewDocumentIntegrityService(registry *widgets.Registry) *DocumentIntegrityService {
	return &DocumentIntegrityService{registry: registry}
}

// rawNode mirrors ElementNode with untyped settings so a bad value is reported
// as a violation instead of aborting the decode.
type rawNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings"`
	Children []rawNode      `json:"children"`
}

type rawDocument struct {
	Version      int                   `json:"version"`
	Title        string                `json:"title"`
	GlobalStyles document.GlobalStyles `json:"globalStyles"`
	Elements     []rawNode             `json:"elements"`
}

// Decode parses and validates a serialized document. Any violation rejects
// the whole document with a *document.SchemaError listing all of them.
func (s *DocumentIntegrityService) Decode(data []byte) (*document.Document, error) {
	var raw rawDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &document.SchemaError{Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	var errs error
	if raw.Version > document.SerializedVersion {
		errs = multierr.Append(errs, fmt.Errorf("unsupported version %d", raw.Version))
	}
	if raw.Elements == nil {
		errs = multierr.Append(errs, fmt.Errorf("missing elements"))
	}

	seen := make(map[string]struct{})
	tree := make(document.Tree, 0, len(raw.Elements))
	for i := range raw.Elements {
		node, err := s.convert(&raw.Elements[i], "", fmt.Sprintf("elements[%d]", i), seen)
		errs = multierr.Append(errs, err)
		if node != nil {
			tree = append(tree, node)
		}
	}
	if errs != nil {
		return nil, &document.SchemaError{Err: errs}
	}

	return &document.Document{
		Title:        raw.Title,
		GlobalStyles: raw.GlobalStyles,
		Elements:     tree,
	}, nil
}

func (s *DocumentIntegrityService) convert(raw *rawNode, parentType document.ElementType, path string, seen map[string]struct{}) (*document.ElementNode, error) {
	var errs error
	t := document.ElementType(raw.Type)

	switch {
	case raw.ID == "":
		errs = multierr.Append(errs, fmt.Errorf("%s: empty id", path))
	default:
		if _, dup := seen[raw.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s", path, document.ErrDuplicateID, raw.ID))
		}
		seen[raw.ID] = struct{}{}
	}

	def, known := s.registry.Get(t)
	if !known {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w %q", path, document.ErrUnknownType, raw.Type))
	} else {
		if parentType == "" && !s.registry.AllowsAtRoot(t) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s at top level", path, document.ErrChildNotAllowed, t))
		}
		if parentType != "" && !s.registry.AllowsChild(parentType, t) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s in %s", path, document.ErrChildNotAllowed, t, parentType))
		}
		if len(raw.Children) > 0 && !def.IsContainer {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s carries children", path, document.ErrNotContainer, t))
		}
		if def.SlotCount > 0 && len(raw.Children) != def.SlotCount {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %s has %d slots, want %d",
				path, document.ErrChildNotAllowed, t, len(raw.Children), def.SlotCount))
		}
	}

	settings, err := document.NewSettings(raw.Settings)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
	}

	node := &document.ElementNode{ID: raw.ID, Type: t, Settings: settings}
	for i := range raw.Children {
		child, err := s.convert(&raw.Children[i], t, fmt.Sprintf("%s.children[%d]", path, i), seen)
		errs = multierr.Append(errs, err)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node, errs
}

// Encode serializes a document in the current format
func (s *DocumentIntegrityService) Encode(doc document.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Serialize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}
