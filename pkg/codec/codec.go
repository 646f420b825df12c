// Package codec converts a domain.Tree to and from its persisted byte format.
//
// The persisted format is a JSON array of nodes, each carrying id, name,
// children and expanded. An empty forest is encoded as [].
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding for export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected json or yaml)", s)
	}
}

// node is the wire representation. Children is always emitted as an array.
type node struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Children []node `json:"children" yaml:"children"`
	Expanded bool   `json:"expanded" yaml:"expanded"`
}

// Encode serializes the forest into the persisted JSON format.
func Encode(tree domain.Tree) ([]byte, error) {
	data, err := json.Marshal(toWire(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}
	return data, nil
}

// Decode parses persisted bytes. Empty input and JSON null yield an empty forest.
// Any other decoding failure wraps domain.ErrMalformedTree.
func Decode(data []byte) (domain.Tree, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.Tree{}, nil
	}

	var wire []node
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedTree, err)
	}
	return fromWire(wire), nil
}

// Marshal renders the forest for export in a human-friendly layout.
func Marshal(tree domain.Tree, format Format) ([]byte, error) {
	wire := toWire(tree)
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(wire)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tree as yaml: %w", err)
		}
		return data, nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(wire, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tree as json: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Unmarshal reads an exported document in the given format.
func Unmarshal(data []byte, format Format) (domain.Tree, error) {
	if format != FormatYAML {
		return Decode(data)
	}

	var wire []node
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedTree, err)
	}
	return fromWire(wire), nil
}

func toWire(nodes []domain.Node) []node {
	out := make([]node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, node{
			ID:       n.ID,
			Name:     n.Name,
			Children: toWire(n.Children),
			Expanded: n.Expanded,
		})
	}
	return out
}

func fromWire(nodes []node) domain.Tree {
	out := make(domain.Tree, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, domain.Node{
			ID:       n.ID,
			Name:     n.Name,
			Children: children(n.Children),
			Expanded: n.Expanded,
		})
	}
	return out
}

func children(nodes []node) []domain.Node {
	if len(nodes) == 0 {
		return nil
	}
	return fromWire(nodes)
}
