package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Mutations *prometheus.CounterVec
	Persists  *prometheus.CounterVec
	Nodes     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_mutations_total",
				Help: "Commands applied to the tree, by command and whether the tree changed",
			},
			[]string{"command", "changed"},
		),
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_persist_total",
				Help: "Store reads and writes, by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "arbor_tree_nodes",
				Help: "Number of nodes in the current tree",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Mutations, m.Persists, m.Nodes)
	}
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(_ context.Context, e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(string(e.Command), strconv.FormatBool(e.Changed)).Inc()
			m.Nodes.Set(float64(e.Size))
		},
		OnPersist: func(_ context.Context, e *domain.PersistEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Persists.WithLabelValues(string(e.Op), outcome).Inc()
		},
	}
}

// Combine returns hooks that call each of the given hooks in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(ctx context.Context, e *domain.MutationEvent) {
			for _, h := range hooks {
				if h.OnMutation != nil {
					h.OnMutation(ctx, e)
				}
			}
		},
		OnPersist: func(ctx context.Context, e *domain.PersistEvent) {
			for _, h := range hooks {
				if h.OnPersist != nil {
					h.OnPersist(ctx, e)
				}
			}
		},
	}
}
