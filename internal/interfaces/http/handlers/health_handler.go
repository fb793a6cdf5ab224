package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// readinessTimeout bounds one round of dependency checks.
const readinessTimeout = 5 * time.Second

// HealthChecker is a dependency that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc struct {
	Component string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Component }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler serves /healthz and /readyz.
type HealthHandler struct {
	version  string
	started  time.Time
	metrics  *prometheus.AppMetrics
	checkers []HealthChecker
}

func NewHealthHandler(version string, metrics *prometheus.AppMetrics, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), metrics: metrics, checkers: checkers}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck is the outcome of one dependency check.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c ComponentCheck) healthy() bool { return c.Status == "healthy" }

// Liveness answers as long as the process serves requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	up := time.Since(h.started)
	if h.metrics != nil {
		h.metrics.ServiceUptime.WithLabelValues("resonance").Set(up.Seconds())
	}
	writeJSON(w, http.StatusOK, LivenessResponse{Status: "alive", Version: h.version, Uptime: up.Truncate(time.Second).String()})
}

// Readiness reports 503 while any of the stores or the provider is
// unreachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Components: h.probe(ctx)}
	code := http.StatusOK
	for _, c := range resp.Components {
		if !c.healthy() {
			resp.Status, code = "not_ready", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

// probe runs every checker concurrently. A failing checker never cancels
// the others.
func (h *HealthHandler) probe(ctx context.Context) map[string]ComponentCheck {
	var (
		g   errgroup.Group
		mu  sync.Mutex
		out = make(map[string]ComponentCheck, len(h.checkers))
	)
	for _, hc := range h.checkers {
		hc := hc
		g.Go(func() error {
			start := time.Now()
			err := hc.Check(ctx)
			res := ComponentCheck{Status: "healthy", Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				res.Status, res.Error = "unhealthy", err.Error()
			}
			if h.metrics != nil {
				prometheus.RecordHealth(h.metrics, hc.Name(), err == nil)
			}
			mu.Lock()
			out[hc.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

//Personal.AI order the ending
