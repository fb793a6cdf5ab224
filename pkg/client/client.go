// Package client is the Go SDK for the Resonance-Intelligence HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const Version = "0.1.0"

const apiPrefix = "/api/v1"

// ErrInvalidConfig is returned by NewClient for an unusable base URL.
var ErrInvalidConfig = errors.New(errors.ErrCodeValidation, "invalid client configuration")

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the Resonance-Intelligence SDK client
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	heatmap       *HeatmapClient
	heatmapOnce   sync.Once
	analyses      *AnalysesClient
	analysesOnce  sync.Once
	locations     *LocationsClient
	locationsOnce sync.Once
}

// APIError is a failed API response. The server reports failures as a
// structured result with a code and suggestions.
type APIError struct {
	StatusCode  int      `json:"status_code"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	RequestID   string   `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resonance: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a client for the API served at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidConfig
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid baseURL: %v", ErrInvalidConfig, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: baseURL scheme must be http or https", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		userAgent:    fmt.Sprintf("resonance-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Heatmap returns the heatmap sub-client.
func (c *Client) Heatmap() *HeatmapClient {
	c.heatmapOnce.Do(func() {
		c.heatmap = &HeatmapClient{client: c}
	})
	return c.heatmap
}

// Analyses returns the analyses sub-client.
func (c *Client) Analyses() *AnalysesClient {
	c.analysesOnce.Do(func() {
		c.analyses = &AnalysesClient{client: c}
	})
	return c.analyses
}

// Locations returns the identified-locations sub-client.
func (c *Client) Locations() *LocationsClient {
	c.locationsOnce.Do(func() {
		c.locations = &LocationsClient{client: c}
	})
	return c.locations
}

// do sends one API call. Transport failures, 429 and 5xx answers are
// retried up to retryMax times; a 429 Retry-After in seconds replaces the
// computed backoff. Each attempt carries a fresh X-Request-ID.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		wait, err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if wait < 0 || attempt >= c.retryMax {
			return err
		}
		if wait == 0 {
			wait = c.calculateBackoff(attempt + 1)
		}
		c.logger.Debugf("retrying %s %s in %v: %v", method, path, wait, err)
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

// attempt performs a single round trip. wait is negative when err must not
// be retried, positive when the server asked for a delay, zero otherwise.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) (wait time.Duration, err error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	h := req.Header
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.userAgent)
	h.Set("X-Request-ID", requestID)
	if payload != nil {
		h.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("%s %s failed: %v", method, path, err)
		return 0, err
	}
	defer resp.Body.Close()
	c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeAPIError(resp.StatusCode, requestID, raw)
		switch {
		case apiErr.IsRateLimited():
			if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs > 0 {
				c.logger.Infof("rate limited, retrying after %ds", secs)
				return time.Duration(secs) * time.Second, apiErr
			}
			return 0, apiErr
		case apiErr.IsServerError():
			return 0, apiErr
		default:
			return -1, apiErr
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return -1, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return 0, nil
}

func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{}
	if len(body) > 0 && json.Unmarshal(body, apiErr) != nil {
		apiErr.Message = string(body)
	}
	apiErr.StatusCode = status
	apiErr.RequestID = requestID
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	// up to 25% jitter
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}

// keyPath addresses an analysis; an empty key means the most recent one.
func keyPath(key string) string {
	if key == "" {
		key = "latest"
	}
	return apiPrefix + "/analyses/" + url.PathEscape(key)
}

//Personal.AI order the ending
