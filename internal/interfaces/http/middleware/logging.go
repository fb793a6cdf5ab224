package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged.
	SkipPaths []string
	// SlowThreshold raises successful requests above it to Warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips the probe and scrape endpoints. An analysis
// request legitimately takes tens of seconds, so the slow threshold is high.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: time.Minute,
	}
}

// statusOf reads the status a handler wrote; a handler that wrote nothing
// answered 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// RequestLogging logs one line per request: 5xx at Error, 4xx and slow
// requests at Warn, the rest at Info. Requests addressing a stored analysis
// carry its key.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			status := statusOf(ww)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.RequestURI()),
				logging.Int("status", status),
				logging.Duration("duration", elapsed),
				logging.Int("bytes", ww.BytesWritten()),
				logging.String("request_id", chimw.GetReqID(r.Context())),
			}
			if key := chi.URLParam(r, "key"); key != "" {
				fields = append(fields, logging.AnalysisKey(key))
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("request failed", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("request rejected", fields...)
			case config.SlowThreshold > 0 && elapsed >= config.SlowThreshold:
				logger.Warn("slow request", fields...)
			default:
				logger.Info("request served", fields...)
			}
		})
	}
}

//Personal.AI order the ending
