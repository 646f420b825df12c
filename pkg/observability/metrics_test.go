package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_FromEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	ctx := context.Background()

	eng, err := arbor.New(memory.NewStore(), arbor.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	_, err = eng.Initialize(ctx)
	require.NoError(t, err)

	tree := eng.AddNode(ctx, "", "Fruits")
	eng.AddNode(ctx, tree[0].ID, "Apples")
	eng.ToggleExpand(ctx, "missing")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Mutations.WithLabelValues("add", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Mutations.WithLabelValues("toggle", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Persists.WithLabelValues("load", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Persists.WithLabelValues("save", "ok")))

	count, err := testutil.GatherAndCount(reg, "arbor_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_PersistErrors(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	hooks := metrics.Hooks()

	hooks.OnPersist(context.Background(), &domain.PersistEvent{Op: domain.PersistSave, Err: errors.New("boom")})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Persists.WithLabelValues("save", "error")))
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnMutation: func(context.Context, *domain.MutationEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnMutation: func(context.Context, *domain.MutationEvent) { calls = append(calls, "b") },
		OnPersist:  func(context.Context, *domain.PersistEvent) { calls = append(calls, "b-persist") },
	}

	hooks := observability.Combine(a, b)
	hooks.OnMutation(context.Background(), &domain.MutationEvent{})
	hooks.OnPersist(context.Background(), &domain.PersistEvent{})

	assert.Equal(t, []string{"a", "b", "b-persist"}, calls)
}
