package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

// Metrics holds all Prometheus metrics for the outlier detection service
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Detection run metrics
	RunsTotal       prometheus.Counter
	RunDuration     prometheus.Histogram
	RunDatasetSize  prometheus.Histogram
	RunObjectsValid prometheus.Histogram
	RunTruncated    prometheus.Counter

	// Block-sweep metrics
	BlocksProcessed      prometheus.Histogram
	DistanceComputations prometheus.Histogram
	PivotCount           *prometheus.GaugeVec
	CutoffValue          prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Dataset load metrics
	DatasetLoadTotal    prometheus.Counter
	DatasetLoadDuration prometheus.Histogram

	// Run registry metrics
	ActiveRunsTotal prometheus.Gauge
	RunQueueDepth   *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
	CPUUsage        prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		// Request metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orca_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		// Detection run metrics
		RunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_detect_runs_total",
				Help: "Total number of detection runs executed",
			},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_run_duration_seconds",
				Help:    "Wall-clock duration of a detection run",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
		),
		RunDatasetSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_dataset_size",
				Help:    "Number of objects in the dataset a run was executed against",
				Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
			},
		),
		RunObjectsValid: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_valid_outliers",
				Help:    "Number of outliers reported per run before truncation is considered",
				Buckets: []float64{1, 5, 10, 20, 30, 50, 100},
			},
		),
		RunTruncated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_detect_truncated_runs_total",
				Help: "Total number of runs that returned fewer than N outliers",
			},
		),

		// Block-sweep metrics
		BlocksProcessed: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_blocks_processed",
				Help:    "Number of sweep blocks processed before early termination or exhaustion",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		DistanceComputations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_distance_computations",
				Help:    "Number of real distance computations performed per run",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
		),
		PivotCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orca_detect_pivot_count",
				Help: "Number of pivots used by the most recent run, by selector strategy",
			},
			[]string{"strategy"},
		),
		CutoffValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_detect_final_cutoff",
				Help:    "Final Top-N cutoff weight at run completion",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Cache metrics
		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_cache_size",
				Help: "Current number of entries in the result cache",
			},
		),

		// Dataset load metrics
		DatasetLoadTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_dataset_loads_total",
				Help: "Total number of dataset load operations",
			},
		),
		DatasetLoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_dataset_load_duration_seconds",
				Help:    "Dataset load duration in seconds",
				Buckets: []float64{.01, .1, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		// Run registry metrics
		ActiveRunsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_active_runs",
				Help: "Number of detection runs currently tracked by the run registry",
			},
		),
		RunQueueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orca_run_queue_depth",
				Help: "Number of queued or running detection runs by status",
			},
			[]string{"status"},
		),

		// System metrics
		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
		CPUUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_cpu_usage",
				Help: "CPU usage percentage",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordRun records a completed detection run
func (m *Metrics) RecordRun(duration time.Duration, datasetSize, validCount int, truncated bool) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.RunDatasetSize.Observe(float64(datasetSize))
	m.RunObjectsValid.Observe(float64(validCount))
	if truncated {
		m.RunTruncated.Inc()
	}
}

// RecordSweep records per-run block-sweep counters
func (m *Metrics) RecordSweep(blocks, distanceComputations int, finalCutoff float64) {
	m.BlocksProcessed.Observe(float64(blocks))
	m.DistanceComputations.Observe(float64(distanceComputations))
	m.CutoffValue.Observe(finalCutoff)
}

// UpdatePivotCount records the pivot count chosen by a selector strategy
func (m *Metrics) UpdatePivotCount(strategy string, count int) {
	m.PivotCount.WithLabelValues(strategy).Set(float64(count))
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateCacheSize updates cache size
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}

// RecordDatasetLoad records a dataset load operation
func (m *Metrics) RecordDatasetLoad(duration time.Duration) {
	m.DatasetLoadTotal.Inc()
	m.DatasetLoadDuration.Observe(duration.Seconds())
}

// UpdateActiveRuns updates the active run count tracked by the run registry
func (m *Metrics) UpdateActiveRuns(count int) {
	m.ActiveRunsTotal.Set(float64(count))
}

// UpdateRunQueueDepth updates the queue depth for a given run status
func (m *Metrics) UpdateRunQueueDepth(status string, depth int) {
	m.RunQueueDepth.WithLabelValues(status).Set(float64(depth))
}

// UpdateGoroutineCount updates goroutine count
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateCPUUsage updates CPU usage
func (m *Metrics) UpdateCPUUsage(percentage float64) {
	m.CPUUsage.Set(percentage)
}
