package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spending_maps"

// Metrics holds the Prometheus counters and histograms for map builds.
type Metrics struct {
	MapsBuilt     prometheus.Counter
	BuildErrors   *prometheus.CounterVec // labels: stage={extract,map,load}
	RowsRead      prometheus.Counter
	RowsDropped   prometheus.Counter
	DuplicateKeys prometheus.Counter
	BuildDuration prometheus.Histogram
	JobsRunning   prometheus.Gauge

	// Boundary file cache.
	BoundaryCache *prometheus.CounterVec // labels: result={hit,miss}

	// Region sink.
	RegionsPublished prometheus.Counter

	// Mapbox style lookups.
	BasemapChecks *prometheus.CounterVec // labels: outcome={ok,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		MapsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_built_total",
			Help:      "Total choropleth maps written.",
		}),
		BuildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Map build failures by pipeline stage.",
		}, []string{"stage"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total CSV rows read across all jobs.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows whose geographic identifier could not be normalized.",
		}),
		DuplicateKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_keys_total",
			Help:      "Join keys seen more than once within a single table.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete extract, map and load cycle for one job.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		JobsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Number of map jobs currently building.",
		}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_cache_total",
			Help:      "Boundary file cache lookups by result.",
		}, []string{"result"}),
		RegionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_published_total",
			Help:      "Per-region records written to Kafka.",
		}),
		BasemapChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basemap_checks_total",
			Help:      "Mapbox style lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MapsBuilt,
		m.BuildErrors,
		m.RowsRead,
		m.RowsDropped,
		m.DuplicateKeys,
		m.BuildDuration,
		m.JobsRunning,
		m.BoundaryCache,
		m.RegionsPublished,
		m.BasemapChecks,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
