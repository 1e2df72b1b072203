package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sandbox service.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	RunsActive  prometheus.Gauge

	// Capability bridge metrics
	CapabilityCalls    *prometheus.CounterVec
	CapabilityDuration *prometheus.HistogramVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics creates a metrics collector on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector on a specific registerer; tests
// pass a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_runs_total",
				Help: "Total number of sandbox runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sandbox_run_duration_seconds",
				Help:    "Sandbox run duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		RunsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sandbox_runs_active",
				Help: "Number of sandbox runs currently executing",
			},
		),
		CapabilityCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_capability_calls_total",
				Help: "Total capability invocations by name and status",
			},
			[]string{"capability", "status"},
		),
		CapabilityDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sandbox_capability_duration_seconds",
				Help:    "Capability invocation duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"capability"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sandbox_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
}

// RecordRun records a completed run with its classified outcome.
func (m *Metrics) RecordRun(outcome string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RunStarted marks a run as active.
func (m *Metrics) RunStarted() {
	m.RunsActive.Inc()
}

// RunFinished marks a run as no longer active.
func (m *Metrics) RunFinished() {
	m.RunsActive.Dec()
}

// RecordCapabilityCall records one capability invocation.
func (m *Metrics) RecordCapabilityCall(name string, ok bool, duration time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.CapabilityCalls.WithLabelValues(name, status).Inc()
	m.CapabilityDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Uptime returns time since metrics creation.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
