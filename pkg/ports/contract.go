package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBlobStoreContract runs a suite of tests to verify that a BlobStore implementation
// adheres to the defined interface contract.
func RunBlobStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")
	payload := []byte(`[{"id":"a","name":"Fruits","children":[],"expanded":true}]`)

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, key, payload)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, payload))
		require.NoError(t, store.Save(ctx, key, []byte("[]")))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Empty Key", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, "", payload))
		_, err := store.Load(ctx, "")
		assert.Error(t, err)
	})

	t.Run("Stored Bytes Are Isolated", func(t *testing.T) {
		data := []byte("[1]")
		require.NoError(t, store.Save(ctx, key, data))
		data[1] = '2'

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "[1]", string(loaded))

		loaded[1] = '3'
		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "[1]", string(again))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, payload))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key should not fail")
	})

	t.Run("List", func(t *testing.T) {
		key1 := key + "-1"
		key2 := key + "-2"
		require.NoError(t, store.Save(ctx, key1, payload))
		require.NoError(t, store.Save(ctx, key2, payload))

		defer func() {
			_ = store.Delete(ctx, key1)
			_ = store.Delete(ctx, key2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key1)
		assert.Contains(t, keys, key2)
	})
}
