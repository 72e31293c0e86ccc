package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carte_scolaire_http_requests_total",
		Help: "Total HTTP requests by route pattern and status code",
	}, []string{"route", "code"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carte_scolaire_http_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"route"})
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carte_scolaire_resolutions_total",
		Help: "Total address resolutions by outcome status",
	}, []string{"status"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carte_scolaire_upstream_requests_total",
		Help: "Total upstream calls (directory, geocoder) by outcome",
	}, []string{"provider", "outcome"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carte_scolaire_upstream_duration_ms",
		Help:    "Upstream call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	}, []string{"provider"})
	EnrichmentFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carte_scolaire_enrichment_failures_total",
		Help: "Total establishment lookups that failed during enrichment",
	})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carte_scolaire_cache_hits_total",
		Help: "Total directory cache hits",
	}, []string{"backend"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carte_scolaire_cache_misses_total",
		Help: "Total directory cache misses",
	}, []string{"backend"})
	CatchmentRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "carte_scolaire_catchment_rows",
		Help: "Number of catchment rows currently loaded",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPDurationMs,
		ResolutionsTotal,
		UpstreamRequestsTotal,
		UpstreamDurationMs,
		EnrichmentFailuresTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CatchmentRows,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
