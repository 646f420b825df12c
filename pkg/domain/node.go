package domain

import "encoding/json"

// Node is a single element of the forest.
type Node struct {
	// ID is opaque and generated by the engine. It is unique across the forest.
	ID string `json:"id"`

	// Name is the display label assigned by the user.
	Name string `json:"name"`

	// Children are kept in insertion order.
	Children []Node `json:"children"`

	// Expanded is UI state. It never prunes or unloads Children.
	Expanded bool `json:"expanded"`
}

// MarshalJSON always emits children, as an empty array for leaves.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	p := plain(n)
	if p.Children == nil {
		p.Children = []Node{}
	}
	return json.Marshal(p)
}

// Tree is the ordered sequence of root-level nodes.
type Tree []Node

// NewNode creates a leaf node. New nodes always start expanded.
func NewNode(id, name string) Node {
	return Node{
		ID:       id,
		Name:     name,
		Expanded: true,
	}
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits every node in pre-order, passing its depth (roots are at depth 0).
// Returning false from fn skips the children of that node.
func Walk(tree Tree, fn func(node Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Count returns the number of nodes in the forest, at all depths.
func Count(tree Tree) int {
	total := 0
	Walk(tree, func(Node, int) bool {
		total++
		return true
	})
	return total
}

// IDs returns every id in the forest in pre-order.
func IDs(tree Tree) []string {
	ids := make([]string, 0, Count(tree))
	Walk(tree, func(n Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Equal reports whether two forests are structurally identical.
// A nil and an empty children slice compare equal.
func Equal(a, b Tree) bool {
	return equalNodes(a, b)
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name || a[i].Expanded != b[i].Expanded {
			return false
		}
		if !equalNodes(a[i].Children, b[i].Children) {
			return false
		}
	}
	return true
}
