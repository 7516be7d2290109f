package services

import (
	"embed"
	"fmt"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/widgets"
	domainservices "github.com/AtRiskMedia/blockbuilder-go/internal/domain/services"
)

//go:embed starters/*.yaml
var starterFS embed.FS

// StarterNode is one element of a starter template. Settings are merged over
// the widget defaults; a container without listed children gets its default
// slots.
type StarterNode struct {
	Type     document.ElementType `yaml:"type"`
	Settings map[string]any       `yaml:"settings"`
	Children []StarterNode        `yaml:"children"`
}

// Starter is a predefined document new sessions can start from
type Starter struct {
	ID           string                `yaml:"id" json:"id"`
	Name         string                `yaml:"name" json:"name"`
	Description  string                `yaml:"description" json:"description"`
	Title        string                `yaml:"title" json:"title"`
	GlobalStyles document.GlobalStyles `yaml:"globalStyles" json:"-"`
	Elements     []StarterNode         `yaml:"elements" json:"-"`
}

// StarterService loads the embedded starter templates and instantiates them
type StarterService struct {
	registry *widgets.Registry
	trees    *domainservices.TreeService
	starters map[string]*Starter
	order    []string
}

// NewStarterService parses every embedded starter and checks each one
// instantiates into a valid tree
func NewStarterService(registry *widgets.Registry) (*StarterService, error) {
	s := &StarterService{
		registry: registry,
		trees:    domainservices.NewTreeService(registry),
		starters: make(map[string]*Starter),
	}

	entries, err := starterFS.ReadDir("starters")
	if err != nil {
		return nil, fmt.Errorf("failed to read starters: %w", err)
	}
	for _, entry := range entries {
		data, err := starterFS.ReadFile(path.Join("starters", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read starter %s: %w", entry.Name(), err)
		}
		var starter Starter
		if err := yaml.Unmarshal(data, &starter); err != nil {
			return nil, fmt.Errorf("failed to parse starter %s: %w", entry.Name(), err)
		}
		if starter.ID == "" {
			return nil, fmt.Errorf("starter %s has no id", entry.Name())
		}
		if _, err := s.instantiate(&starter); err != nil {
			return nil, fmt.Errorf("starter %s is invalid: %w", starter.ID, err)
		}
		s.starters[starter.ID] = &starter
		s.order = append(s.order, starter.ID)
	}

	// blank first, the rest by name
	sort.SliceStable(s.order, func(i, j int) bool {
		a, b := s.starters[s.order[i]], s.starters[s.order[j]]
		if (a.ID == "blank") != (b.ID == "blank") {
			return a.ID == "blank"
		}
		return a.Name < b.Name
	})
	return s, nil
}

// List returns every starter in palette order
func (s *StarterService) List() []*Starter {
	out := make([]*Starter, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.starters[id])
	}
	return out
}

// Instantiate builds a fresh document from a starter. Every call yields new ids.
func (s *StarterService) Instantiate(id string) (*document.Document, error) {
	starter, ok := s.starters[id]
	if !ok {
		return nil, fmt.Errorf("unknown starter %q", id)
	}
	return s.instantiate(starter)
}

func (s *StarterService) instantiate(starter *Starter) (*document.Document, error) {
	tree := make(document.Tree, 0, len(starter.Elements))
	for i := range starter.Elements {
		node, err := s.build(&starter.Elements[i])
		if err != nil {
			return nil, err
		}
		tree = append(tree, node)
	}
	if err := s.trees.Validate(tree); err != nil {
		return nil, err
	}
	return &document.Document{
		Title:        starter.Title,
		GlobalStyles: starter.GlobalStyles,
		Elements:     tree,
	}, nil
}

func (s *StarterService) build(item *StarterNode) (*document.ElementNode, error) {
	node, err := s.registry.CreateDefaultElement(item.Type)
	if err != nil {
		return nil, err
	}
	if len(item.Settings) > 0 {
		merged, err := node.Settings.Merge(item.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to apply settings to %s: %w", item.Type, err)
		}
		node.Settings = merged
	}
	if len(item.Children) > 0 {
		node.Children = make([]*document.ElementNode, 0, len(item.Children))
		for i := range item.Children {
			child, err := s.build(&item.Children[i])
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}
