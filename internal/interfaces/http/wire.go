package http

import (
	"net/http"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/Resonance-Intelligence/internal/interfaces/http/middleware"
)

func healthCheckers(c *app.Container) []handlers.HealthChecker {
	if c.Infra == nil {
		return nil
	}
	checkers := make([]handlers.HealthChecker, 0, len(c.Infra.Checks))
	for _, hc := range c.Infra.Checks {
		checkers = append(checkers, handlers.CheckFunc{Component: hc.Component, Fn: hc.Check})
	}
	return checkers
}

// NewAPIHandler builds the full route tree on top of a wired container.
func NewAPIHandler(c *app.Container, version string) http.Handler {
	srv := c.Config.Server
	cors := middleware.DefaultCORSConfig(srv.AllowedOrigins)
	logCfg := middleware.DefaultLoggingConfig()
	limit := middleware.DefaultRateLimitConfig(srv.RequestRate, srv.RequestBurst)

	return NewRouter(RouterConfig{
		HeatmapHandler:  handlers.NewHeatmapHandler(c.Heatmap, c.Logger),
		AnalysisHandler: handlers.NewAnalysisHandler(c.Campaign, c.Targeting, c.Reports, c.Logger),
		LocationHandler: handlers.NewLocationHandler(c.Targeting, c.Logger),
		HealthHandler:   handlers.NewHealthHandler(version, c.Metrics, healthCheckers(c)...),
		CORS:            &cors,
		Logging:         &logCfg,
		RateLimit:       &limit,
		Logger:          c.Logger,
		Metrics:         c.Metrics,
		Registry:        c.Registry,
		Debug:           srv.Mode == "debug",
	})
}

// NewProbeHandler serves only the probes and the metrics scrape endpoint,
// for processes without a public API such as the worker.
func NewProbeHandler(c *app.Container, version string) http.Handler {
	return NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, c.Metrics, healthCheckers(c)...),
		Logger:        c.Logger,
		Registry:      c.Registry,
	})
}

//Personal.AI order the ending
