package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Resonance-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Resonance-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware settings of the route
// tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	HeatmapHandler  *handlers.HeatmapHandler
	AnalysisHandler *handlers.AnalysisHandler
	LocationHandler *handlers.LocationHandler
	HealthHandler   *handlers.HealthHandler

	CORS      *middleware.CORSConfig
	Logging   *middleware.LoggingConfig
	RateLimit *middleware.RateLimitConfig

	Logger   logging.Logger
	Metrics  *prometheus.AppMetrics
	Registry prometheus.Registrar

	// Debug mounts the pprof handlers under /debug.
	Debug bool
}

// NewRouter builds the route tree: global middleware, probes, the metrics
// scrape endpoint and the /api/v1 resources.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(cfg.Logger))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logging != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, *cfg.Logging))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimit != nil && cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Registry != nil {
		r.Handle("/metrics", cfg.Registry.Handler())
	}
	if cfg.Debug {
		r.Mount("/debug", chimw.Profiler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerHeatmapRoutes(api, cfg.HeatmapHandler)
		registerAnalysisRoutes(api, cfg.AnalysisHandler)
		registerLocationRoutes(api, cfg.LocationHandler)
	})

	return r
}

func registerHeatmapRoutes(r chi.Router, h *handlers.HeatmapHandler) {
	if h == nil {
		return
	}
	r.Route("/heatmap", func(hr chi.Router) {
		hr.Post("/", h.Locate)
		hr.Post("/summary", h.Summary)
		hr.Post("/top", h.Top)
		hr.Post("/bottom", h.Bottom)
	})
}

func registerAnalysisRoutes(r chi.Router, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	r.Route("/analyses", func(ar chi.Router) {
		ar.Get("/", h.List)
		ar.Post("/", h.Create)

		ar.Route("/{key}", func(item chi.Router) {
			item.Get("/", h.Summary)
			item.Get("/structure", h.Structure)
			item.Get("/rally", h.Rally)
			item.Get("/goldmine", h.Goldmine)
			item.Get("/report", h.Report)
			item.Post("/filter", h.Filter)
		})
	})
}

func registerLocationRoutes(r chi.Router, h *handlers.LocationHandler) {
	if h == nil {
		return
	}
	r.Route("/locations", func(lr chi.Router) {
		lr.Get("/", h.Current)
		lr.Get("/history", h.History)
		lr.Get("/{tag}", h.Get)
		lr.Get("/{tag}/polygon", h.Polygon)
	})
}

//Personal.AI order the ending
