package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PipelineRuns     *prometheus.CounterVec
	DatasetRows      prometheus.Gauge
	DegradedRows     prometheus.Gauge
	DatasetWarnings  prometheus.Gauge
	Predictions      *prometheus.CounterVec
	Elaborations     *prometheus.CounterVec
	ElaborationCache *prometheus.CounterVec

	CircuitBreakerState *prometheus.GaugeVec
}

// New creates the collectors under namespace and registers them together
// with the Go runtime and process collectors.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Dataset merge and derive runs",
		},
		[]string{"status"},
	)
	m.DatasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_rows",
		Help:      "Rows in the merged dataset",
	})
	m.DegradedRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_degraded_rows",
		Help:      "Rows whose derived metrics used substituted defaults",
	})
	m.DatasetWarnings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_warnings",
		Help:      "Degraded-input warnings raised by the last pipeline run",
	})
	m.Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Delay predictions by predictor mode",
		},
		[]string{"mode"},
	)
	m.Elaborations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elaborations_total",
			Help:      "Action elaborations by elaborator and outcome",
		},
		[]string{"elaborator", "outcome"},
	)
	m.ElaborationCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elaboration_cache_total",
			Help:      "Elaboration cache lookups by result",
		},
		[]string{"result"},
	)
	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PipelineRuns,
		m.DatasetRows,
		m.DegradedRows,
		m.DatasetWarnings,
		m.Predictions,
		m.Elaborations,
		m.ElaborationCache,
		m.CircuitBreakerState,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, path string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

// ObservePipeline records one merge+derive run.
func (m *Metrics) ObservePipeline(err error, rows, degraded, warnings int) {
	if m == nil {
		return
	}
	if err != nil {
		m.PipelineRuns.WithLabelValues("error").Inc()
		return
	}
	m.PipelineRuns.WithLabelValues("ok").Inc()
	m.DatasetRows.Set(float64(rows))
	m.DegradedRows.Set(float64(degraded))
	m.DatasetWarnings.Set(float64(warnings))
}

func (m *Metrics) ObservePrediction(mode string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(mode).Inc()
}

// ObserveElaboration records an elaboration outcome: "ok", "fallback" or
// "skipped".
func (m *Metrics) ObserveElaboration(elaborator, outcome string) {
	if m == nil {
		return
	}
	m.Elaborations.WithLabelValues(elaborator, outcome).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ElaborationCache.WithLabelValues(result).Inc()
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(state)
}
