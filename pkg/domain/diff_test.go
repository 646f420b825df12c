package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	base := domain.Tree{
		{ID: "a", Name: "Fruits", Expanded: true, Children: []domain.Node{domain.NewNode("a1", "Apples")}},
		domain.NewNode("b", "Vegetables"),
	}

	t.Run("Initial load", func(t *testing.T) {
		d := domain.Diff(nil, base)
		assert.Equal(t, []string{"a", "a1", "b"}, d.Added)
		assert.Empty(t, d.Removed)
	})

	t.Run("No change", func(t *testing.T) {
		assert.True(t, domain.Diff(base, base).Empty())
	})

	t.Run("Cascade delete", func(t *testing.T) {
		next, _ := domain.DeleteNode(base, "a")
		d := domain.Diff(base, next)
		assert.Equal(t, []string{"a", "a1"}, d.Removed)
		assert.Empty(t, d.Added)
	})

	t.Run("Rename and toggle", func(t *testing.T) {
		next, _ := domain.RenameNode(base, "a1", "Pommes")
		next, _ = domain.ToggleExpand(next, "b")
		d := domain.Diff(base, next)
		assert.Equal(t, []string{"a1"}, d.Renamed)
		assert.Equal(t, []string{"b"}, d.Toggled)
		assert.False(t, d.Empty())
	})
}
