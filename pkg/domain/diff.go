package domain

// TreeDiff lists the ids affected between two snapshots.
// It is designed to be serialized to JSON so clients can patch a rendered view.
type TreeDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Renamed []string `json:"renamed,omitempty"`
	Toggled []string `json:"toggled,omitempty"`
}

// Empty reports whether the diff holds no changes.
func (d *TreeDiff) Empty() bool {
	return d == nil || len(d.Added)+len(d.Removed)+len(d.Renamed)+len(d.Toggled) == 0
}

// Diff calculates the difference between oldTree and newTree.
// Ids are reported in pre-order of the tree they come from. When an id occurs
// more than once, the first occurrence is compared.
func Diff(oldTree, newTree Tree) *TreeDiff {
	before := index(oldTree)
	after := index(newTree)
	diff := &TreeDiff{}

	Walk(newTree, func(n Node, _ int) bool {
		prev, ok := before[n.ID]
		switch {
		case !ok:
			diff.Added = appendOnce(diff.Added, n.ID)
		case prev == after[n.ID]:
		default:
			cur := after[n.ID]
			if prev.name != cur.name {
				diff.Renamed = appendOnce(diff.Renamed, n.ID)
			}
			if prev.expanded != cur.expanded {
				diff.Toggled = appendOnce(diff.Toggled, n.ID)
			}
		}
		return true
	})

	Walk(oldTree, func(n Node, _ int) bool {
		if _, ok := after[n.ID]; !ok {
			diff.Removed = appendOnce(diff.Removed, n.ID)
		}
		return true
	})

	return diff
}

type nodeFacts struct {
	name     string
	expanded bool
}

func index(tree Tree) map[string]nodeFacts {
	facts := make(map[string]nodeFacts)
	Walk(tree, func(n Node, _ int) bool {
		if _, seen := facts[n.ID]; !seen {
			facts[n.ID] = nodeFacts{name: n.Name, expanded: n.Expanded}
		}
		return true
	})
	return facts
}

func appendOnce(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
