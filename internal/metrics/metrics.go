package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jewgo_api_requests_total",
		Help: "Total API requests issued, by endpoint",
	}, []string{"endpoint"})
	APIRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jewgo_api_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint"})
	DedupSharedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jewgo_dedup_shared_total",
		Help: "Page loads that joined an in-flight request instead of issuing a new one",
	})
	ReaperEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jewgo_reaper_evictions_total",
		Help: "In-flight entries evicted for being older than the stale bound",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jewgo_cache_hits_total",
		Help: "Category cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jewgo_cache_misses_total",
		Help: "Category cache misses",
	})
	LocationUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jewgo_location_updates_total",
		Help: "Location fixes received, by result (accepted, ignored, error)",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDurationMs)
	prometheus.MustRegister(DedupSharedTotal)
	prometheus.MustRegister(ReaperEvictionsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(LocationUpdatesTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
