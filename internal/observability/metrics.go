package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records evaluation activity as Prometheus series.
type Metrics struct {
	passes       *prometheus.CounterVec
	passDuration prometheus.Histogram
	nodeRuns     *prometheus.CounterVec
	nodeFailures *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgraph_evaluations_total",
				Help: "Total number of evaluation passes by outcome.",
			},
			[]string{"outcome"},
		),
		passDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxgraph_evaluation_duration_seconds",
				Help:    "Duration of evaluation passes.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		nodeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgraph_node_invocations_total",
				Help: "Total number of node evaluations by definition.",
			},
			[]string{"definition"},
		),
		nodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxgraph_node_failures_total",
				Help: "Total number of failed node evaluations by definition.",
			},
			[]string{"definition"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxgraph_node_duration_seconds",
				Help:    "Duration of node evaluations by definition.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"definition"},
		),
	}

	for _, c := range []prometheus.Collector{m.passes, m.passDuration, m.nodeRuns, m.nodeFailures, m.nodeDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding these metrics.
func (m *Metrics) Hooks() LifecycleHooks {
	return LifecycleHooks{
		OnPassDone: func(_ context.Context, e *PassEvent) {
			outcome := "success"
			if e.Err != nil {
				outcome = "failure"
			}
			m.passes.WithLabelValues(outcome).Inc()
			m.passDuration.Observe(e.Duration.Seconds())
		},
		OnNodeLeave: func(_ context.Context, e *NodeEvent) {
			m.nodeRuns.WithLabelValues(e.Definition).Inc()
			m.nodeDuration.WithLabelValues(e.Definition).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.nodeFailures.WithLabelValues(e.Definition).Inc()
			}
		},
	}
}
