package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll attempt results.
const (
	AttemptEmpty = "empty"
	AttemptRows  = "rows"
	AttemptError = "error"
)

// latencyBuckets covers a fast REST read up to a slow cold-started function.
var latencyBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // default buckets

// Manager manages the Prometheus metrics of a probe run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Trigger metrics
	triggerRequests *prometheus.CounterVec
	triggerLatency  prometheus.Histogram

	// Poll metrics
	pollAttempts *prometheus.CounterVec
	pollLatency  prometheus.Histogram
	rowsFound    prometheus.Gauge

	// Run metrics
	runOutcomes      *prometheus.CounterVec
	runDuration      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without a registry option the
// metrics land on a private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hourlyprobe",
		subsystem:        "probe",
		histogramBuckets: latencyBuckets,
		constLabels:      map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.triggerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "trigger_requests_total",
		Help:        "Trigger function invocations by response status code",
		ConstLabels: m.constLabels,
	}, []string{"status_code"})

	m.triggerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "trigger_latency_milliseconds",
		Help:        "Round trip of the trigger call in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.pollAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "poll_attempts_total",
		Help:        "Read attempts by result (empty, rows, error)",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.pollLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "poll_latency_milliseconds",
		Help:        "Round trip of a single read attempt in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.rowsFound = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_found",
		Help:        "Rows returned by the last successful read",
		ConstLabels: m.constLabels,
	})

	m.runOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_outcomes_total",
		Help:        "Finished runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall-clock duration of the last run",
		ConstLabels: m.constLabels,
	})

	m.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last run finished",
		ConstLabels: m.constLabels,
	})
}

// RecordTrigger counts a trigger response and its latency.
func (m *Manager) RecordTrigger(statusCode int, latency time.Duration) {
	m.triggerRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	m.triggerLatency.Observe(float64(latency) / float64(time.Millisecond))
}

// RecordPollAttempt counts one read attempt. rows is ignored when err is set.
func (m *Manager) RecordPollAttempt(rows int, latency time.Duration, err error) {
	m.pollLatency.Observe(float64(latency) / float64(time.Millisecond))
	switch {
	case err != nil:
		m.pollAttempts.WithLabelValues(AttemptError).Inc()
	case rows > 0:
		m.pollAttempts.WithLabelValues(AttemptRows).Inc()
		m.rowsFound.Set(float64(rows))
	default:
		m.pollAttempts.WithLabelValues(AttemptEmpty).Inc()
	}
}

// RecordRun records how a run ended.
func (m *Manager) RecordRun(outcome string, duration time.Duration, finished time.Time) {
	m.runOutcomes.WithLabelValues(outcome).Inc()
	m.runDuration.Set(duration.Seconds())
	m.lastRunTimestamp.Set(float64(finished.Unix()))
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
