package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency per chi route pattern, so
// /api/v1/analyses/{key}/rally is one series regardless of the key.
func Metrics(m *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			m.HTTPActiveRequests.WithLabelValues().Inc()
			defer m.HTTPActiveRequests.WithLabelValues().Dec()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			prometheus.RecordHTTPRequest(m, r.Method, route, statusOf(ww), time.Since(start))
		})
	}
}

//Personal.AI order the ending
