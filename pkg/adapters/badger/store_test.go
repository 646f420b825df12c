package badger_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/badger"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore_Contract(t *testing.T) {
	store, err := badger.Open(badger.InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	ports.RunBlobStoreContract(t, store)
}

func TestBadgerStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := badger.Open(badger.DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "categoryTree", []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Close())

	reopened, err := badger.Open(badger.DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Load(ctx, "categoryTree")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))
}

func TestBadgerStore_PrefixIsolation(t *testing.T) {
	cfg := badger.InMemoryConfig()
	cfg.Prefix = "team-a:"
	store, err := badger.Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "tree", []byte("[]")))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tree"}, keys)

	_, err = store.Load(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := badger.Open(badger.Config{})
	assert.Error(t, err)
}
