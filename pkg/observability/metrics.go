package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plotline"

// Metrics holds the Prometheus collectors fed by the synthesis hooks.
type Metrics struct {
	Runs         *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	FlowNodes    prometheus.Histogram
	DroppedEdges prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthesis_runs_total",
				Help:      "Total number of synthesis runs by outcome and final stage",
			},
			[]string{"outcome", "stage"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesis_duration_seconds",
				Help:      "Duration of synthesis runs, generator call included",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		FlowNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesized_flow_nodes",
				Help:      "Number of nodes in flows produced by the generator",
				Buckets:   prometheus.LinearBuckets(2, 4, 8),
			},
		),
		DroppedEdges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_edges_total",
				Help:      "Total number of edges dropped during normalization",
			},
		),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.Runs, m.Duration, m.FlowNodes, m.DroppedEdges} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns the callbacks that record into m.
func (m *Metrics) Hooks() domain.SynthesisHooks {
	return domain.SynthesisHooks{
		OnSynthesized: func(_ context.Context, e *domain.SynthesisEvent) {
			m.Runs.WithLabelValues("ok", e.Stage).Inc()
			m.Duration.WithLabelValues("ok").Observe(e.Duration.Seconds())
			m.FlowNodes.Observe(float64(e.NodeCount))
		},
		OnFallback: func(_ context.Context, e *domain.SynthesisEvent) {
			m.Runs.WithLabelValues("fallback", e.Stage).Inc()
			m.Duration.WithLabelValues("fallback").Observe(e.Duration.Seconds())
		},
		OnEdgeDropped: func(_ context.Context, _ *domain.EdgeEvent) {
			m.DroppedEdges.Inc()
		},
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
