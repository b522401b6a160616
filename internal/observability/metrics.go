package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests by retrieval mode",
		},
		[]string{"mode"},
	)
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_pipeline_duration_seconds",
			Help:    "Time spent in the recommendation pipeline, cache misses only",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
	RetrievalDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_degraded_total",
			Help: "Requests served by keyword fallback after a semantic search failure",
		},
	)
	FilterExclusionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_exclusions_total",
			Help: "Candidates excluded by hard filters, by reason",
		},
		[]string{"reason"},
	)
	EmptyResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_empty_results_total",
			Help: "Requests that produced no recommendation",
		},
	)
	ResponseCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
	CatalogVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_version",
			Help: "Current catalog version, bumped on every seller boost update",
		},
	)
)

// ObserveRecommendation records one pipeline run.
func ObserveRecommendation(mode string, degraded bool, filtered map[string]int, results int, dur time.Duration) {
	RecommendationsTotal.WithLabelValues(mode).Inc()
	RecommendationDuration.Observe(dur.Seconds())
	if degraded {
		RetrievalDegradedTotal.Inc()
	}
	for reason, n := range filtered {
		if n > 0 {
			FilterExclusionsTotal.WithLabelValues(reason).Add(float64(n))
		}
	}
	if results == 0 {
		EmptyResultsTotal.Inc()
	}
}

func CacheLookup(result string) {
	ResponseCacheTotal.WithLabelValues(result).Inc()
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
