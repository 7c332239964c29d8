package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather service.
type Metrics struct {
	// Upstream provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error,decode_error}
	ProviderDuration *prometheus.HistogramVec // labels: endpoint

	// Aggregation pipeline metrics.
	PipelineRequests *prometheus.CounterVec // labels: outcome={success,error}
	PipelineDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests  *prometheus.CounterVec // labels: method={search,reverse}, outcome={success,error,empty}
	GeocodeFallbacks prometheus.Counter
	GeocodeCache     *prometheus.CounterVec // labels: method={search,reverse}, result={hit,miss}

	// Favorites refresher metrics.
	RefreshRuns      *prometheus.CounterVec // labels: outcome={success,error}
	FavoritesTracked prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.PipelineRequests,
		m.PipelineDuration,
		m.GeocodeRequests,
		m.GeocodeFallbacks,
		m.GeocodeCache,
		m.RefreshRuns,
		m.FavoritesTracked,
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
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "provider_requests_total",
			Help:      "Upstream provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climawiki",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		PipelineRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "pipeline_requests_total",
			Help:      "Aggregation pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climawiki",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete fetch-merge-normalize run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "geocode_fallbacks_total",
			Help:      "Searches that fell through to the secondary provider.",
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climawiki",
			Name:      "refresh_runs_total",
			Help:      "Favorite refresh attempts by outcome.",
		}, []string{"outcome"}),
		FavoritesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climawiki",
			Name:      "favorites_tracked",
			Help:      "Number of saved favorites seen by the last refresh run.",
		}),
	}
}
