// Package metric provides Prometheus metrics for CalcMCP.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "calcmcp"

// Metrics holds all application metrics, registered on a private registry so
// tests can create isolated instances.
type Metrics struct {
	// Session registry metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter
	SessionsRemoved prometheus.Counter

	// Sweeper metrics
	SweepDuration prometheus.Histogram
	SweepFailures prometheus.Counter

	// Tool metrics
	ToolInvocations *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered, including
// the standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of currently-registered, non-expired sessions.",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Total number of sessions created.",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "expired_total",
			Help:      "Total number of sessions evicted by the idle sweeper.",
		}),
		SessionsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "removed_total",
			Help:      "Total number of sessions removed explicitly.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of one scan-and-evict sweep cycle.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		SweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "sweep_failures_total",
			Help:      "Total number of sweep ticks that failed internally.",
		}),
		ToolInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Total tool invocations by tool name and status.",
		}, []string{"tool", "status"}),

		registry: reg,
	}
}

// Handler returns an HTTP handler serving this instance's metrics in
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
