package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GraphOverlay contains display state to visualize on the graph.
type GraphOverlay struct {
	// Highlight marks a single node, e.g. the result of a lookup.
	Highlight string
}

// GenerateMermaid produces a Mermaid flowchart of the forest.
// It applies semantic styling:
// - Leaf: [Rectangle]
// - Node with children: (Rounded)
// Collapsed nodes get the "collapsed" class. Every node is emitted
// regardless of expansion state.
func GenerateMermaid(tree domain.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var collapsed []string
	var emit func(parent string, nodes []domain.Node)
	emit = func(parent string, nodes []domain.Node) {
		for _, n := range nodes {
			safeID := sanitizeMermaidID(n.ID)

			opener, closer := "[", "]"
			if !n.IsLeaf() {
				opener, closer = "(", ")"
				if !n.Expanded {
					collapsed = append(collapsed, safeID)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(n.Name), closer))

			if parent != "" {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", parent, safeID))
			}
			emit(safeID, n.Children)
		}
	}
	emit("", tree)

	if len(collapsed) > 0 {
		sb.WriteString("\n    classDef collapsed fill:#f3e8ff,stroke:#7c3aed,stroke-dasharray:4 2,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s collapsed;\n", strings.Join(collapsed, ",")))
	}

	if overlay != nil && overlay.Highlight != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Highlight)))
	}

	return sb.String()
}

// sanitizeMermaidID maps an arbitrary node id to a Mermaid-safe identifier.
// The prefix keeps ids that start with a digit or collide with keywords valid.
func sanitizeMermaidID(id string) string {
	var b strings.Builder
	b.WriteString("n_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
