package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestRegistrar(t *testing.T) Registrar {
	t.Helper()
	r, err := NewCollector(CollectorConfig{Namespace: "resonance"}, logging.NewNopLogger())
	require.NoError(t, err)
	return r
}

func scrape(t *testing.T, r Registrar) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewCollector_RequiresNamespace(t *testing.T) {
	_, err := NewCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestConfigFromMetrics(t *testing.T) {
	cfg := ConfigFromMetrics(config.MetricsConfig{Namespace: "resonance", Subsystem: "api"})
	assert.Equal(t, "resonance", cfg.Namespace)
	assert.Equal(t, "api", cfg.Subsystem)
	assert.True(t, cfg.RuntimeMetrics)
	assert.Equal(t, DefaultProviderDurationBuckets, cfg.Buckets)
}

func TestRegisterCounter_Reuse(t *testing.T) {
	r := newTestRegistrar(t)
	a := r.RegisterCounter("jobs_total", "jobs", "kind")
	b := r.RegisterCounter("jobs_total", "jobs", "kind")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Inc()

	assert.Contains(t, scrape(t, r), `resonance_jobs_total{kind="x"} 2`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	r := newTestRegistrar(t)
	r.RegisterCounter("things", "things")
	g := r.RegisterGauge("things", "things")
	assert.IsType(t, noopVec[Gauge]{}, g)
	g.WithLabelValues().Set(3)
}

func TestWith_WrongLabelsDoesNotPanic(t *testing.T) {
	r := newTestRegistrar(t)
	c := r.RegisterCounter("calls_total", "calls", "endpoint")
	h := r.RegisterHistogram("latency_seconds", "latency", nil, "endpoint")
	g := r.RegisterGauge("inflight", "inflight", "endpoint")

	assert.NotPanics(t, func() {
		c.With(map[string]string{"other": "x"}).Inc()
		c.WithLabelValues("a", "b").Inc()
		h.With(map[string]string{}).Observe(1)
		g.WithLabelValues().Inc()
	})
}

func TestRegisterHistogram_DefaultBucketsAndConstLabels(t *testing.T) {
	r, err := NewCollector(CollectorConfig{
		Namespace:   "resonance",
		Subsystem:   "worker",
		Buckets:     []float64{2},
		ConstLabels: map[string]string{"service": "resonance"},
	}, nil)
	require.NoError(t, err)

	h := r.RegisterHistogram("grid_seconds", "grid", nil, "grid")
	h.WithLabelValues("location").Observe(1)

	body := scrape(t, r)
	assert.Contains(t, body, `resonance_worker_grid_seconds_bucket{grid="location",service="resonance",le="2"} 1`)
	assert.NotContains(t, body, "process_cpu_seconds_total")
}

//Personal.AI order the ending
