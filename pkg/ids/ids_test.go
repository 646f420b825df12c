package ids_test

import (
	"regexp"
	"testing"

	"github.com/aretw0/arbor/pkg/ids"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUID(t *testing.T) {
	id := ids.UUID{}.NewID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestShort_Layout(t *testing.T) {
	pattern := regexp.MustCompile(`^_[0-9a-z]{9}$`)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := ids.Short{}.NewID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Len(t, seen, 500)
}

func TestForKind(t *testing.T) {
	assert.IsType(t, ids.Short{}, ids.ForKind("SHORT"))
	assert.IsType(t, ids.UUID{}, ids.ForKind("uuid"))
	assert.IsType(t, ids.UUID{}, ids.ForKind(""))
}
