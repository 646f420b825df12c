// Package ids provides the node identifier generators used by the engine.
package ids

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

const (
	// KindUUID generates random (version 4) UUIDs.
	KindUUID = "uuid"
	// KindShort generates compact ids of the form "_" followed by 9 base36 characters.
	KindShort = "short"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// UUID generates RFC 4122 version 4 identifiers.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}

// Short generates ids matching the layout of records created by earlier
// browser-based versions of the tree, e.g. "_k3j9x0a1b".
type Short struct{}

// NewID returns a new short id.
func (Short) NewID() string {
	var b strings.Builder
	b.Grow(10)
	b.WriteByte('_')
	limit := big.NewInt(int64(len(base36)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to a uuid fragment.
			return "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
		}
		b.WriteByte(base36[n.Int64()])
	}
	return b.String()
}

// ForKind returns the generator registered under kind, defaulting to UUID.
func ForKind(kind string) ports.IDGenerator {
	if strings.EqualFold(kind, KindShort) {
		return Short{}
	}
	return UUID{}
}
