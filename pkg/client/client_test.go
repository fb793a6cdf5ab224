package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "resonance-go-sdk/")
	assert.Empty(t, c.apiKey)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://invalid", "invalid-url"} {
		_, err := NewClient(u)
		assert.ErrorIs(t, err, ErrInvalidConfig, u)
	}
}

func TestClient_SubClients_ConcurrentAccess(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	heat := make([]*HeatmapClient, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			heat[i] = c.Heatmap()
			_ = c.Analyses()
			_ = c.Locations()
		}(i)
	}
	wg.Wait()
	for _, h := range heat {
		assert.Same(t, c.Heatmap(), h)
	}
}

// ---------------------------------------------------------------------------
// Transport Tests
// ---------------------------------------------------------------------------

func TestClient_Do_RequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}, WithAPIKey("k"), WithUserAgent("ua/1"))

	require.NoError(t, c.post(context.Background(), "/x", map[string]string{"a": "b"}, nil))
	assert.Equal(t, "Bearer k", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "ua/1", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestClient_Do_NoAuthorizationWithoutKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.get(context.Background(), "x", nil))
}

func TestClient_Do_4xxStructuredError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":"error","code":"ANA_003","message":"analysis not found","suggestions":["run an analysis first"]}`)
	})

	err := c.get(context.Background(), "/api/v1/analyses/latest", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "ANA_003", apiErr.Code)
	assert.Equal(t, "analysis not found", apiErr.Message)
	assert.Equal(t, []string{"run an analysis first"}, apiErr.Suggestions)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_PlainTextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway config", http.StatusBadRequest)
	})
	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "bad gateway config")
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})

	var out map[string]string
	require.NoError(t, c.post(context.Background(), "/echo", map[string]string{"k": "v"}, &out))
	assert.Equal(t, "v", out["k"], "body must be resent on every attempt")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_429RetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Do_NetworkErrorLogged(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	logger := &testLogger{}
	c, err := NewClient(addr, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond), WithLogger(logger))
	require.NoError(t, err)
	assert.Error(t, c.get(context.Background(), "/x", nil))
	assert.Positive(t, atomic.LoadInt32(&logger.count))
}

func TestAPIError_Methods(t *testing.T) {
	e := &APIError{StatusCode: http.StatusTooManyRequests, Code: "COMMON_429", Message: "slow down", RequestID: "r1"}
	assert.True(t, e.IsRateLimited())
	assert.False(t, e.IsNotFound())
	assert.False(t, e.IsServerError())
	assert.Equal(t, "resonance: COMMON_429 (HTTP 429): slow down [request_id=r1]", e.Error())
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

func TestKeyPath(t *testing.T) {
	assert.Equal(t, "/api/v1/analyses/latest", keyPath(""))
	assert.Equal(t, "/api/v1/analyses/a%2Fb.json", keyPath("a/b.json"))
}

//Personal.AI order the ending
