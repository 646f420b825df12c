package tui

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// ToMarkdown renders the forest as a nested bullet list under a heading.
// Collapsed nodes are rendered with all their descendants.
func ToMarkdown(title string, tree domain.Tree) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	if len(tree) == 0 {
		b.WriteString("_empty_\n")
		return b.String()
	}
	domain.Walk(tree, func(n domain.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(escapeMarkdown(n.Name))
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
