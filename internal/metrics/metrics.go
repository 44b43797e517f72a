package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for designbind
type Metrics struct {
	// Provider counters
	ProviderRequestsTotal *prometheus.CounterVec

	// Job tracking
	JobPolls     *prometheus.CounterVec
	JobsFinished *prometheus.CounterVec
	JobsTracked  prometheus.Gauge

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	Goroutines       prometheus.Gauge
	JournalUsedBytes prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		// Provider counters
		ProviderRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbind_provider_requests_total",
				Help: "Total number of upstream design provider requests",
			},
			[]string{"provider", "op", "outcome"},
		),

		// Job tracking
		JobPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbind_job_polls_total",
				Help: "Total number of job status polls",
			},
			[]string{"kind", "outcome"},
		),
		JobsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbind_jobs_finished_total",
				Help: "Total number of jobs that reached a terminal state",
			},
			[]string{"kind", "status"},
		),
		JobsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "designbind_jobs_tracked",
				Help: "Number of jobs currently being polled",
			},
		),

		// API metrics
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbind_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "designbind_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbind_api_errors_total",
				Help: "Total number of API errors",
			},
			[]string{"error_type"},
		),

		// System metrics
		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "designbind_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "designbind_goroutines",
				Help: "Number of active goroutines",
			},
		),
		JournalUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "designbind_journal_used_bytes",
				Help: "Job journal file size in bytes",
			},
		),

		registry: reg,
	}

	// Register all metrics
	reg.MustRegister(
		m.ProviderRequestsTotal,
		m.JobPolls,
		m.JobsFinished,
		m.JobsTracked,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.UptimeSeconds,
		m.Goroutines,
		m.JournalUsedBytes,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// IncProviderRequest increments the provider request counter
func IncProviderRequest(provider, op, outcome string) {
	m := Global()
	if m != nil {
		m.ProviderRequestsTotal.WithLabelValues(provider, op, outcome).Inc()
	}
}

// IncAPIErrors increments API error counter
func IncAPIErrors(errorType string) {
	m := Global()
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(errorType).Inc()
	}
}
