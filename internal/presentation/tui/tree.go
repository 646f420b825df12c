package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
	"github.com/xlab/treeprint"

	"github.com/aretw0/arbor/pkg/domain"
)

// TreeOptions controls how a forest is drawn.
type TreeOptions struct {
	// Title is the label of the synthetic root line.
	Title string
	// ShowIDs appends node ids to each label.
	ShowIDs bool
	// ShowAll descends into collapsed nodes.
	ShowAll bool
	// Profile selects the color capability. Zero value is TrueColor;
	// use termenv.Ascii for plain output.
	Profile termenv.Profile
}

// RenderTree draws the forest as an ASCII tree. Collapsed nodes show a
// marker and a hidden-descendant count unless ShowAll is set.
func RenderTree(tree domain.Tree, opts TreeOptions) string {
	title := opts.Title
	if title == "" {
		title = "."
	}
	root := treeprint.NewWithRoot(opts.Profile.String(title).Bold().String())
	if len(tree) == 0 {
		root.AddNode(opts.Profile.String("(empty)").Faint().String())
		return root.String()
	}
	addChildren(root, tree, opts)
	return root.String()
}

func addChildren(parent treeprint.Tree, nodes []domain.Node, opts TreeOptions) {
	for _, n := range nodes {
		label := nodeLabel(n, opts)
		if n.IsLeaf() {
			parent.AddNode(label)
			continue
		}
		branch := parent.AddBranch(label)
		if n.Expanded || opts.ShowAll {
			addChildren(branch, n.Children, opts)
		}
	}
}

func nodeLabel(n domain.Node, opts TreeOptions) string {
	p := opts.Profile
	var b strings.Builder

	switch {
	case n.IsLeaf():
	case n.Expanded:
		b.WriteString(p.String("▾ ").Foreground(p.Color("#818cf8")).String())
	default:
		b.WriteString(p.String("▸ ").Foreground(p.Color("#f472b6")).String())
	}

	b.WriteString(n.Name)

	if !n.IsLeaf() && !n.Expanded && !opts.ShowAll {
		hidden := domain.Count(n.Children)
		b.WriteString(p.String(fmt.Sprintf(" (+%d)", hidden)).Faint().String())
	}
	if opts.ShowIDs {
		b.WriteString(p.String(" [" + n.ID + "]").Faint().String())
	}
	return b.String()
}
