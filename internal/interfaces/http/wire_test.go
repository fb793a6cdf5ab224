package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/app"
	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/testutil"
)

func wiredContainer(t *testing.T, checks ...app.HealthCheck) *app.Container {
	t.Helper()
	p := testutil.NewFakeProvider()
	p.AddGrid("location",
		signal.LocationPoint{Latitude: 1, Longitude: 1, Affinity: 0.9, Popularity: 0.8},
		signal.LocationPoint{Latitude: 2, Longitude: 2, Affinity: 0.1, Popularity: 0.2})

	infra := &app.Infrastructure{
		Provider:  p,
		Artifacts: testutil.NewMemoryArtifacts(),
		Locations: testutil.NewMemoryLocations(),
		Checks:    checks,
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	svc, err := app.NewServices(cfg.Analysis, infra, nil, nil)
	require.NoError(t, err)

	reg, metrics, err := app.NewMetrics(config.MetricsConfig{Enabled: true, Namespace: "resonance"}, nil)
	require.NoError(t, err)
	return &app.Container{
		Config:   cfg,
		Logger:   testutil.NewMockLogger(),
		Registry: reg,
		Metrics:  metrics,
		Infra:    infra,
		Services: svc,
	}
}

func TestNewAPIHandler_ServesHeatmap(t *testing.T) {
	h := NewAPIHandler(wiredContainer(t), "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmap/top",
		strings.NewReader(`{"location":"Columbus, Ohio","n":5}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Columbus, Ohio", body["location"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `resonance_http_requests_total{method="POST",route="/api/v1/heatmap/top",status_code="200"} 1`)
}

func TestNewAPIHandler_ReadinessUsesInfraChecks(t *testing.T) {
	c := wiredContainer(t,
		app.HealthCheck{Component: "redis", Check: func(context.Context) error { return nil }},
		app.HealthCheck{Component: "minio", Check: func(context.Context) error { return stderrors.New("bucket missing") }},
	)
	h := NewAPIHandler(c, "test")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"minio"`)
	assert.Contains(t, rec.Body.String(), "bucket missing")
}

func TestNewProbeHandler(t *testing.T) {
	h := NewProbeHandler(wiredContainer(t), "test")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/heatmap/top", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RunListenerStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(config.ServerConfig{ShutdownTimeout: time.Second}, NewAPIHandler(wiredContainer(t), "test"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunListener(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

//Personal.AI order the ending
