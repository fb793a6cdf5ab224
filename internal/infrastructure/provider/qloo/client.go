// Package qloo implements signal.Provider over the Qloo cultural-intelligence
// HTTP API: entity search, tag search and heatmap insights.
package qloo

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Version is reported in the default User-Agent.
const Version = "1.0.0"

const (
	pathSearch   = "/search"
	pathTags     = "/v2/tags"
	pathInsights = "/v2/insights"

	// HeatmapFilterType selects heatmap output from the insights endpoint.
	HeatmapFilterType = "urn:heatmap"
	// DefaultEntityType is the entity type searched when none is configured.
	DefaultEntityType = "urn:entity:person"

	maxErrorBody = 512
)

// MetricsCollector receives request counters and latencies.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

const (
	metricRequestTotal    = "provider_request_total"
	metricRequestDuration = "provider_request_duration_seconds"
)

// Client talks to the provider API. It is safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       logging.Logger
	metrics      MetricsCollector
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	entityTypes  []string
}

var _ signal.Provider = (*Client)(nil)

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qloo: HTTP %d: %s [request_id=%s]", e.StatusCode, e.Message, e.RequestID)
}

// NewClient creates a client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeProviderAuthFailed, "provider api key is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid provider base url %q", baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		userAgent:    "resonance-intelligence/" + Version,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(10), 5),
		logger:       logging.NewNopLogger(),
		metrics:      noopMetrics{},
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		entityTypes:  []string{DefaultEntityType},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search resolves a name to entities or tags depending on req.Kind.
func (c *Client) Search(ctx context.Context, req signal.SearchRequest) (*signal.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "search query is required")
	}
	if req.Kind == signal.KindTag {
		return c.searchTags(ctx, req)
	}
	return c.searchEntities(ctx, req)
}

func (c *Client) searchEntities(ctx context.Context, req signal.SearchRequest) (*signal.SearchResult, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("types", strings.Join(c.entityTypes, ","))
	if req.Limit > 0 {
		q.Set("take", strconv.Itoa(req.Limit))
	}
	if req.SortBy != "" {
		q.Set("sort_by", req.SortBy)
	}

	var body searchResponse
	if err := c.get(ctx, pathSearch, q, &body); err != nil {
		return nil, err
	}
	res := &signal.SearchResult{}
	for _, e := range body.Results {
		if e.EntityID == "" {
			continue
		}
		res.Matches = append(res.Matches, e.match())
	}
	res.Success = len(res.Matches) > 0
	return res, nil
}

func (c *Client) searchTags(ctx context.Context, req signal.SearchRequest) (*signal.SearchResult, error) {
	q := url.Values{}
	q.Set("filter.query", req.Query)
	if req.Limit > 0 {
		q.Set("take", strconv.Itoa(req.Limit))
	}

	var body tagsResponse
	if err := c.get(ctx, pathTags, q, &body); err != nil {
		return nil, err
	}
	res := &signal.SearchResult{}
	for _, t := range body.Results.Tags {
		m := t.match()
		if m.ID == "" {
			continue
		}
		res.Matches = append(res.Matches, m)
	}
	res.Success = len(res.Matches) > 0
	if !res.Success && len(body.Results.Tags) > 0 {
		res.Error = "No valid tag ID found in results"
	}
	return res, nil
}

// GetGrid fetches heatmap points. A response the provider marks as failed
// is returned as Success=false with its error text.
func (c *Client) GetGrid(ctx context.Context, req signal.GridRequest) (*signal.GridResult, error) {
	var body insightsResponse
	if err := c.get(ctx, pathInsights, insightsQuery(req), &body); err != nil {
		return nil, err
	}
	if !body.Success && len(body.Results.Heatmap) == 0 {
		msg := body.errorMessage()
		if msg == "" {
			msg = "Unknown error"
		}
		return &signal.GridResult{Error: msg}, nil
	}
	res := &signal.GridResult{Success: true, Points: make([]signal.LocationPoint, 0, len(body.Results.Heatmap))}
	for _, p := range body.Results.Heatmap {
		res.Points = append(res.Points, p.point())
	}
	return res, nil
}

// insightsQuery encodes a grid request as insights query parameters. The
// demographic and audience signals are only sent when WithSignals is set.
func insightsQuery(req signal.GridRequest) url.Values {
	q := url.Values{}
	q.Set("filter.type", HeatmapFilterType)
	q.Set("filter.location.query", req.Location)
	if len(req.EntityIDs) > 0 {
		q.Set("signal.interests.entities", strings.Join(req.EntityIDs, ","))
	}
	if len(req.TagIDs) > 0 {
		q.Set("signal.interests.tags", strings.Join(req.TagIDs, ","))
	}
	if req.WithSignals {
		if req.Demographics.Age != "" {
			q.Set("signal.demographics.age", req.Demographics.Age)
		}
		if req.Demographics.Gender != "" {
			q.Set("signal.demographics.gender", req.Demographics.Gender)
		}
		if len(req.AudienceIDs) > 0 {
			q.Set("signal.demographics.audiences", strings.Join(req.AudienceIDs, ","))
			if req.AudienceWeight != nil {
				q.Set("signal.demographics.audiences.weight", strconv.FormatFloat(*req.AudienceWeight, 'f', -1, 64))
			}
		}
	}
	if req.Boundary != "" {
		q.Set("output.heatmap.boundary", req.Boundary)
	}
	if req.BiasTrends != "" {
		q.Set("bias.trends", req.BiasTrends)
	}
	if req.Limit > 0 {
		q.Set("take", strconv.Itoa(req.Limit))
	}
	return q
}

// get performs a rate-limited GET with retry on network errors, 5xx and 429.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	endpoint := strings.TrimPrefix(path, "/")

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("retrying provider request", logging.String("endpoint", endpoint),
				logging.Int("attempt", attempt), logging.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCodeProviderTimeout, "provider request cancelled")
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, errors.ErrCodeProviderTimeout, "provider rate limiter wait aborted")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeProviderError, "failed to create provider request")
		}
		requestID := uuid.New().String()
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		elapsed := time.Since(start)
		c.metrics.ObserveHistogram(metricRequestDuration, elapsed.Seconds(), map[string]string{"endpoint": endpoint})

		if err != nil {
			c.record(endpoint, "error")
			c.logger.Warn("provider request failed", logging.String("endpoint", endpoint),
				logging.String("request_id", requestID), logging.Err(err))
			lastErr = transportError(err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeProviderError, "failed to read provider response")
		}
		c.record(endpoint, strconv.Itoa(resp.StatusCode))
		c.logger.Debug("provider request",
			logging.String("endpoint", endpoint),
			logging.Int("status", resp.StatusCode),
			logging.Duration("elapsed", elapsed),
			logging.String("request_id", requestID))

		if resp.StatusCode >= 400 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), RequestID: requestID}
			lastErr = statusError(apiErr)
			if shouldRetry(resp.StatusCode) {
				continue
			}
			return lastErr
		}

		if result != nil && len(body) > 0 {
			if err := json.Unmarshal(body, result); err != nil {
				return errors.Wrap(err, errors.ErrCodeProviderParseError, "failed to decode provider response")
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) record(endpoint, status string) {
	c.metrics.IncCounter(metricRequestTotal, map[string]string{"endpoint": endpoint, "status": status})
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if q := int64(backoff / 4); q > 0 {
		backoff += time.Duration(rand.Int63n(q))
	}
	return backoff
}

func statusError(e *APIError) *errors.AppError {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return errors.Wrap(e, errors.ErrCodeProviderAuthFailed, "provider rejected credentials")
	case e.StatusCode == http.StatusTooManyRequests:
		return errors.Wrap(e, errors.ErrCodeProviderRateLimited, "provider rate limit exceeded")
	case e.StatusCode == http.StatusGatewayTimeout || e.StatusCode == http.StatusRequestTimeout:
		return errors.Wrap(e, errors.ErrCodeProviderTimeout, "provider timed out")
	default:
		return errors.Wrap(e, errors.ErrCodeProviderError, "provider request failed")
	}
}

func transportError(err error) *errors.AppError {
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		return errors.Wrap(err, errors.ErrCodeProviderTimeout, "provider request timed out")
	}
	return errors.Wrap(err, errors.ErrCodeProviderError, "provider request failed")
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

//Personal.AI order the ending
