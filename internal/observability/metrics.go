package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vhi"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Ingestion metrics.
	IngestRuns         prometheus.Counter
	IngestErrors       prometheus.Counter
	IngestDuration     prometheus.Histogram
	FilesIngested      prometheus.Counter
	RowsRead           prometheus.Counter
	RowsDropped        prometheus.Counter
	MalformedFilenames prometheus.Counter
	DatasetRows        prometheus.Gauge

	// Dataset cache lookups.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Query metrics.
	QueryRequests *prometheus.CounterVec // labels: view={table,weekly,comparison}
	QueryRows     prometheus.Histogram

	// NOAA fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram

	// Kafka publishing.
	RecordsPublished prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IngestRuns,
		m.IngestErrors,
		m.IngestDuration,
		m.FilesIngested,
		m.RowsRead,
		m.RowsDropped,
		m.MalformedFilenames,
		m.DatasetRows,
		m.CacheLookups,
		m.QueryRequests,
		m.QueryRows,
		m.FetchRequests,
		m.FetchDuration,
		m.RecordsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		IngestRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Total ingestion passes over a source directory.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      "Ingestion passes aborted by a fatal file error.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingestion pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FilesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Source files parsed successfully.",
		}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from source files.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped because year or VHI was not numeric.",
		}),
		MalformedFilenames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_filenames_total",
			Help:      "Source files whose name has no region segment.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Observations in the most recently loaded dataset.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_lookups_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_requests_total",
			Help:      "Dashboard view evaluations by view.",
		}, []string{"view"}),
		QueryRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned per dashboard view evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "NOAA download requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "NOAA download request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Observations written to the Kafka topic.",
		}),
	}
}

// NewLocalMetrics creates Metrics outside any registry, for short-lived
// processes such as the CLI that never serve /metrics.
func NewLocalMetrics() *Metrics {
	return newMetrics()
}
