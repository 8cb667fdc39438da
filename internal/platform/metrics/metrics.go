// Package metrics exposes the process counters on a private prometheus registry
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "immiwatch"

// Metrics holds every collector the monthly pipeline reports to.
// A nil *Metrics is valid and records nothing
type Metrics struct {
	reg *prometheus.Registry

	merges         *prometheus.CounterVec
	ingestFailures *prometheus.CounterVec
	renderFailures prometheus.Counter
	transitions    *prometheus.CounterVec
	mergeSeconds   prometheus.Histogram
}

// New builds a registry with the pipeline collectors plus the go and process defaults
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Draw events merged into a month bucket, by program field.",
		}, []string{"program"}),
		ingestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Ingestions that ended in an error, by reason.",
		}, []string{"reason"}),
		renderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Report regenerations that failed after a successful merge.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Month transition checks, by outcome.",
		}, []string{"outcome"}),
		mergeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_seconds",
			Help:      "Wall time of the load, merge and save cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	m.reg.MustRegister(
		m.merges, m.ingestFailures, m.renderFailures, m.transitions, m.mergeSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Merged counts one merged event
func (m *Metrics) Merged(program string, took time.Duration) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(program).Inc()
	m.mergeSeconds.Observe(took.Seconds())
}

// IngestFailed counts one failed ingestion
func (m *Metrics) IngestFailed(reason string) {
	if m == nil {
		return
	}
	m.ingestFailures.WithLabelValues(reason).Inc()
}

// RenderFailed counts one degraded outcome
func (m *Metrics) RenderFailed() {
	if m == nil {
		return
	}
	m.renderFailures.Inc()
}

// Transition counts one transition check
func (m *Metrics) Transition(outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the text exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
