package domain

import "slices"

// FindNode returns the first node whose id matches, searching depth-first in
// pre-order: a parent is checked before its children and the first sibling
// subtree is fully explored before the next one.
func FindNode(tree Tree, id string) (Node, bool) {
	return find(tree, id)
}

func find(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := find(n.Children, id); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Path returns the ids from a root down to the node with the given id, inclusive.
// It returns nil when the id is absent.
func Path(tree Tree, id string) []string {
	var path []string
	var search func(nodes []Node) bool
	search = func(nodes []Node) bool {
		for _, n := range nodes {
			path = append(path, n.ID)
			if n.ID == id || search(n.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !search(tree) {
		return nil
	}
	return path
}

// AddNode appends child to the children of parentID and forces the parent
// expanded. An empty parentID appends child as a new root. The tree is returned
// unchanged when the parent does not exist or already holds a child with the
// same id.
func AddNode(tree Tree, parentID string, child Node) (Tree, bool) {
	if parentID == "" {
		if containsID(tree, child.ID) {
			return tree, false
		}
		return append(slices.Clip(tree), child), true
	}

	return update(tree, parentID, func(parent Node) (Node, bool) {
		if containsID(parent.Children, child.ID) {
			return parent, false
		}
		parent.Children = append(slices.Clip(parent.Children), child)
		parent.Expanded = true
		return parent, true
	})
}

// RenameNode replaces the name of the node with the given id.
func RenameNode(tree Tree, id, name string) (Tree, bool) {
	return update(tree, id, func(n Node) (Node, bool) {
		if n.Name == name {
			return n, false
		}
		n.Name = name
		return n, true
	})
}

// ToggleExpand flips the expanded flag of the node with the given id.
func ToggleExpand(tree Tree, id string) (Tree, bool) {
	return update(tree, id, func(n Node) (Node, bool) {
		n.Expanded = !n.Expanded
		return n, true
	})
}

// DeleteNode removes every node with the given id, together with its subtree,
// at every level of the forest.
func DeleteNode(tree Tree, id string) (Tree, bool) {
	out, changed := prune(tree, id)
	return Tree(out), changed
}

// update applies fn to the first node matching id and rebuilds the path from
// that node up to the root. Siblings and untouched subtrees are shared.
func update(tree Tree, id string, fn func(Node) (Node, bool)) (Tree, bool) {
	out, _, changed := updateNodes(tree, id, fn)
	return Tree(out), changed
}

func updateNodes(nodes []Node, id string, fn func(Node) (Node, bool)) (out []Node, found, changed bool) {
	for i, n := range nodes {
		if n.ID == id {
			updated, ok := fn(n)
			if !ok {
				return nodes, true, false
			}
			return replaceAt(nodes, i, updated), true, true
		}

		children, found, changed := updateNodes(n.Children, id, fn)
		if !found {
			continue
		}
		if !changed {
			return nodes, true, false
		}
		n.Children = children
		return replaceAt(nodes, i, n), true, true
	}
	return nodes, false, false
}

func replaceAt(nodes []Node, i int, n Node) []Node {
	out := slices.Clone(nodes)
	out[i] = n
	return out
}

func prune(nodes []Node, id string) ([]Node, bool) {
	var out []Node
	changed := false

	for i, n := range nodes {
		if n.ID == id {
			if !changed {
				out = append(make([]Node, 0, len(nodes)), nodes[:i]...)
				changed = true
			}
			continue
		}

		if children, ok := prune(n.Children, id); ok {
			n.Children = children
			if !changed {
				out = append(make([]Node, 0, len(nodes)), nodes[:i]...)
				changed = true
			}
		}

		if changed {
			out = append(out, n)
		}
	}

	if !changed {
		return nodes, false
	}
	if len(out) == 0 {
		return nil, true
	}
	return out, true
}

// Clone returns a deep copy of the forest. Nil slices stay nil.
func Clone(tree Tree) Tree {
	return Tree(cloneNodes(tree))
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Children = cloneNodes(n.Children)
		out[i] = n
	}
	return out
}

func containsID(nodes []Node, id string) bool {
	return slices.ContainsFunc(nodes, func(n Node) bool {
		return n.ID == id
	})
}
