// Package metrics provides Prometheus metrics for the raidtier ranking service.
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

// Label values shared by callers.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	TaskOK     = "ok"
	TaskFailed = "failed"
)

// Manager manages all Prometheus metrics for the ranking service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking engine
	viewsComputed   *prometheus.CounterVec
	viewDuration    *prometheus.HistogramVec
	entitiesSkipped *prometheus.CounterVec
	jenksDuration   prometheus.Histogram
	degenerateViews *prometheus.CounterVec

	// Memoization
	cacheRequests *prometheus.CounterVec

	// Dataset
	datasetEntities prometheus.Gauge
	datasetMoves    prometheus.Gauge

	// Worker pool
	workerCount    prometheus.Gauge
	queueDepth     prometheus.Gauge
	workerTasks    *prometheus.CounterVec
	workerTaskTime prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "raidtier",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
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
	constLabels := prometheus.Labels(m.customLabels)

	m.viewsComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("views_computed_total"),
		Help:        "Total number of ranking views computed by kind",
		ConstLabels: constLabels,
	}, []string{"view"})

	m.viewDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("view_duration_seconds"),
		Help:        "Time spent computing a ranking view",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"view"})

	m.entitiesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("entities_skipped_total"),
		Help:        "Entities excluded from a view by reason",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m.jenksDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("jenks_duration_seconds"),
		Help:        "Time spent classifying a score distribution",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.degenerateViews = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("degenerate_views_total"),
		Help:        "Views whose scores were all identical",
		ConstLabels: constLabels,
	}, []string{"view"})

	m.cacheRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_requests_total"),
		Help:        "View cache lookups by result",
		ConstLabels: constLabels,
	}, []string{"result"})

	m.datasetEntities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dataset_entities"),
		Help:        "Entities in the loaded dataset snapshot",
		ConstLabels: constLabels,
	})

	m.datasetMoves = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dataset_moves"),
		Help:        "Moves in the loaded dataset snapshot",
		ConstLabels: constLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Workers in the evaluation pool",
		ConstLabels: constLabels,
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_queue_depth"),
		Help:        "Evaluation tasks waiting for a worker",
		ConstLabels: constLabels,
	})

	m.workerTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_tasks_total"),
		Help:        "Per-entity evaluation tasks by status",
		ConstLabels: constLabels,
	}, []string{"status"})

	m.workerTaskTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_task_duration_seconds"),
		Help:        "Time spent evaluating one entity",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_seconds"),
		Help:        "HTTP request duration in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method"})
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often sampled gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordView counts a computed view and its duration.
func (m *Manager) RecordView(view string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.viewsComputed.WithLabelValues(view).Inc()
	m.viewDuration.WithLabelValues(view).Observe(d.Seconds())
}

// RecordSkipped counts an entity excluded from a view.
func (m *Manager) RecordSkipped(reason string) {
	if !m.enabled {
		return
	}
	m.entitiesSkipped.WithLabelValues(reason).Inc()
}

// RecordJenks observes one classification run.
func (m *Manager) RecordJenks(d time.Duration) {
	if !m.enabled {
		return
	}
	m.jenksDuration.Observe(d.Seconds())
}

// RecordDegenerate counts a view whose scores were all equal.
func (m *Manager) RecordDegenerate(view string) {
	if !m.enabled {
		return
	}
	m.degenerateViews.WithLabelValues(view).Inc()
}

// RecordCache counts a cache lookup; result is CacheHit or CacheMiss.
func (m *Manager) RecordCache(result string) {
	if !m.enabled {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// UpdateDataset sets the snapshot gauges.
func (m *Manager) UpdateDataset(entities, moves int) {
	if !m.enabled {
		return
	}
	m.datasetEntities.Set(float64(entities))
	m.datasetMoves.Set(float64(moves))
}

// UpdateEntities sets the entity gauge alone, for samplers that only count.
func (m *Manager) UpdateEntities(n int) {
	if !m.enabled {
		return
	}
	m.datasetEntities.Set(float64(n))
}

// UpdateWorkerCount sets the pool size gauge.
func (m *Manager) UpdateWorkerCount(n int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(n))
}

// UpdateQueueDepth sets the pending task gauge.
func (m *Manager) UpdateQueueDepth(n int) {
	if !m.enabled {
		return
	}
	m.queueDepth.Set(float64(n))
}

// RecordWorkerTask counts a task; status is TaskOK or TaskFailed.
func (m *Manager) RecordWorkerTask(status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.workerTasks.WithLabelValues(status).Inc()
	m.workerTaskTime.Observe(d.Seconds())
}

// RecordHTTPRequest records one HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// Package-level helpers record on the global manager.

// Default returns the global manager.
func Default() *Manager { return globalManager }

// RecordView counts a computed view on the global manager.
func RecordView(view string, d time.Duration) { globalManager.RecordView(view, d) }

// RecordSkipped counts a skipped entity on the global manager.
func RecordSkipped(reason string) { globalManager.RecordSkipped(reason) }

// RecordJenks observes a classification run on the global manager.
func RecordJenks(d time.Duration) { globalManager.RecordJenks(d) }

// RecordDegenerate counts a degenerate view on the global manager.
func RecordDegenerate(view string) { globalManager.RecordDegenerate(view) }

// RecordCache counts a cache lookup on the global manager.
func RecordCache(result string) { globalManager.RecordCache(result) }

// UpdateDataset sets the snapshot gauges on the global manager.
func UpdateDataset(entities, moves int) { globalManager.UpdateDataset(entities, moves) }

// UpdateWorkerCount sets the pool size gauge on the global manager.
func UpdateWorkerCount(n int) { globalManager.UpdateWorkerCount(n) }

// RecordWorkerTask counts a worker task on the global manager.
func RecordWorkerTask(status string, d time.Duration) { globalManager.RecordWorkerTask(status, d) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, d)
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) { globalManager.enabled = enabled }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
