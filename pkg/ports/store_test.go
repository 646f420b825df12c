package ports_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is a minimal map-backed BlobStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	data, ok := m.data[key]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunBlobStoreContract(t, NewMockStore())
}

func TestIDGeneratorFunc(t *testing.T) {
	var gen ports.IDGenerator = ports.IDGeneratorFunc(func() string { return "fixed" })
	if got := gen.NewID(); got != "fixed" {
		t.Errorf("expected %q, got %q", "fixed", got)
	}
}
