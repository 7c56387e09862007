package flowruntime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus-compatible instrumentation for an Executor.
// Narrower than the teacher's PrometheusMetrics: this executor has no
// scheduler queue to report depth or backpressure for (spec §5's
// single-threaded cooperative walk has no frontier to saturate) and no
// reducer-style concurrent state merge to report conflicts for (context
// mutation is unguarded last-writer-wins outside a joinTracker, there is no
// merge step to conflict). What remains — node latency, retries, and
// in-flight concurrency during a parallel-container fan-out — mirrors the
// teacher's step_latency_ms/retries_total/inflight_nodes directly.
type Metrics struct {
	inflight    prometheus.Gauge
	stepLatency *prometheus.HistogramVec
	retries     *prometheus.CounterVec
}

// NewMetrics registers flowcraft's metrics with registry (use
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowcraft",
			Name:      "inflight_nodes",
			Help:      "Current number of nodes executing concurrently inside a parallel-container fan-out",
		}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowcraft",
			Name:      "step_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"blueprint_id", "node_id", "status"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowcraft",
			Name:      "retries_total",
			Help:      "Cumulative count of node retry attempts",
		}, []string{"blueprint_id", "node_id"}),
	}
}

// ObserveNode records one node execution's latency and outcome.
func (m *Metrics) ObserveNode(blueprintID, nodeID string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.stepLatency.WithLabelValues(blueprintID, nodeID, status).Observe(float64(latency.Milliseconds()))
}

// ObserveRetry increments the retry counter for a node.
func (m *Metrics) ObserveRetry(blueprintID, nodeID string) {
	m.retries.WithLabelValues(blueprintID, nodeID).Inc()
}

// SetInflight reports the current number of concurrently executing branches
// inside a parallel-container fan-out.
func (m *Metrics) SetInflight(count int) {
	m.inflight.Set(float64(count))
}
