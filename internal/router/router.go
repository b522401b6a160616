package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/handler"
	"github.com/actuallystonmai/catalog-recommender/internal/observability"
)

type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	RequestTimeout  time.Duration
}

func Setup(h *handler.Handler, opts Options, logger zerolog.Logger) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.AccessLog(logger))
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Cache"},
		MaxAge:         300,
	}))

	// Routes
	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMin, time.Minute))
		}
		r.Post("/recommend", h.Recommend)
		r.Post("/recommend/batch", h.Batch)
		r.Put("/products/{productID}/seller-boost", h.UpdateSellerBoost)
	})
	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Get("/categories", h.Categories)
	r.Get("/stats", h.Stats)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
