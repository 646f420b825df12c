package ports

import (
	"context"
)

// BlobStore defines the durable key-value boundary the engine persists to.
// Values are opaque bytes; the engine owns their encoding.
type BlobStore interface {
	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the value stored under key.
	// Returns domain.ErrRecordNotFound if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the value stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)
}
