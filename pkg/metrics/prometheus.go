// Package metrics provides Prometheus metrics for the salespulse pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the salespulse pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	rowsLoaded     prometheus.Counter
	rowsDropped    prometheus.Counter
	missingCells   *prometheus.CounterVec
	loadLatency    prometheus.Histogram
	loadsCompleted prometheus.Counter

	// Aggregation
	aggregateLatency *prometheus.HistogramVec

	// Report
	reportDays         prometheus.Gauge
	reportProducts     prometheus.Gauge
	reportRevenue      prometheus.Gauge
	reportLastUnix     prometheus.Gauge
	reportsPublished   prometheus.Counter
	chartRenderLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salespulse",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rowsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_loaded_total"),
		Help:        "Total number of CSV data rows read",
		ConstLabels: labels,
	})

	m.rowsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_dropped_total"),
		Help:        "Total number of rows excluded because of missing or malformed values",
		ConstLabels: labels,
	})

	m.missingCells = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("missing_cells_total"),
			Help:        "Missing or unparseable cells by column",
			ConstLabels: labels,
		},
		[]string{"column"},
	)

	m.loadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("load_latency_milliseconds"),
		Help:        "Time spent reading and parsing the input file",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.loadsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("loads_completed_total"),
		Help:        "Total number of successful input loads",
		ConstLabels: labels,
	})

	m.aggregateLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("aggregate_latency_milliseconds"),
			Help:        "Aggregation latency by kind (daily, top_products)",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.reportDays = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_days"),
		Help:        "Number of days in the latest daily summary",
		ConstLabels: labels,
	})

	m.reportProducts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_ranked_products"),
		Help:        "Number of products in the latest revenue ranking",
		ConstLabels: labels,
	})

	m.reportRevenue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_total_revenue"),
		Help:        "Total revenue across all aggregated lines in the latest report",
		ConstLabels: labels,
	})

	m.reportLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_last_unix"),
		Help:        "Unix timestamp of the last published report",
		ConstLabels: labels,
	})

	m.reportsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reports_published_total"),
		Help:        "Total number of reports published",
		ConstLabels: labels,
	})

	m.chartRenderLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("chart_render_latency_milliseconds"),
			Help:        "Chart rendering latency by chart",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"chart"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: labels,
	})
}

// Enabled reports whether recording is active for this manager.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordRowsLoaded adds n to the rows loaded counter.
func RecordRowsLoaded(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.rowsLoaded.Add(float64(n))
}

// RecordRowsDropped adds n to the dropped rows counter.
func RecordRowsDropped(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.rowsDropped.Add(float64(n))
}

// RecordMissingCells adds n missing cells for a column.
func RecordMissingCells(column string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.missingCells.WithLabelValues(column).Add(float64(n))
}

// RecordLoadLatency records load latency in milliseconds.
func RecordLoadLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.loadLatency.Observe(latencyMs)
	globalManager.loadsCompleted.Inc()
}

// RecordAggregateLatency records aggregation latency for a kind.
func RecordAggregateLatency(kind string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregateLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordChartRenderLatency records chart rendering latency.
func RecordChartRenderLatency(chart string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.chartRenderLatency.WithLabelValues(chart).Observe(latencyMs)
}

// UpdateReport sets the report gauges after a publish.
func UpdateReport(days, products int, totalRevenue float64, at time.Time) {
	if !globalManager.enabled {
		return
	}
	globalManager.reportDays.Set(float64(days))
	globalManager.reportProducts.Set(float64(products))
	globalManager.reportRevenue.Set(totalRevenue)
	globalManager.reportLastUnix.Set(float64(at.Unix()))
	globalManager.reportsPublished.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(ms)
}

// RefreshInterval returns how often system gauges should be sampled.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
