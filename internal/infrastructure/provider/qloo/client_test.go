package qloo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRateLimit(0, 0), WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL+"/", "test-key", opts...)
	require.NoError(t, err)
	return c
}

type recordingMetrics struct {
	counters map[string]int
}

func (m *recordingMetrics) IncCounter(name string, _ map[string]string) {
	if m.counters == nil {
		m.counters = map[string]int{}
	}
	m.counters[name]++
}
func (m *recordingMetrics) ObserveHistogram(string, float64, map[string]string) {}

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("https://api.example.com", "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderAuthFailed))

	_, err = NewClient("ftp://api.example.com", "key")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	c, err := NewClient("https://api.example.com/", "key", WithUserAgent("test/1"), WithRetryMax(2))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.baseURL)
	assert.Equal(t, "test/1", c.userAgent)
	assert.Equal(t, 2, c.retryMax)
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestSearch_Entities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "Jane Doe", r.URL.Query().Get("query"))
		assert.Equal(t, DefaultEntityType, r.URL.Query().Get("types"))
		assert.Equal(t, "2", r.URL.Query().Get("take"))
		assert.Equal(t, "match", r.URL.Query().Get("sort_by"))
		w.Write([]byte(`{"results":[
			{"entity_id":"E1","name":"Jane Doe","types":["urn:entity:person"],"popularity":0.91},
			{"name":"no id"}
		]}`))
	})

	res, err := c.Search(context.Background(), signal.SearchRequest{Query: "Jane Doe", Kind: signal.KindEntity, Limit: 2, SortBy: "match"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "E1", res.Matches[0].ID)
	assert.Equal(t, "urn:entity:person", res.Matches[0].Type)
	assert.Equal(t, 0.91, res.Matches[0].Score)
}

func TestSearch_Tags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/tags", r.URL.Path)
		assert.Equal(t, "economy", r.URL.Query().Get("filter.query"))
		w.Write([]byte(`{"success":true,"results":{"tags":[
			{"id":"urn:tag:keyword:economy","name":"Economy","subtype":"urn:tag:keyword"},
			{"tag_id":"urn:tag:keyword:jobs","name":"Jobs","types":["urn:tag"]}
		]}}`))
	})

	res, err := c.Search(context.Background(), signal.SearchRequest{Query: "economy", Kind: signal.KindTag, Limit: 5})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "urn:tag:keyword:economy", res.Matches[0].ID)
	assert.Equal(t, "urn:tag:keyword:jobs", res.Matches[1].ID)
	assert.Equal(t, "urn:tag", res.Matches[1].Type)
}

func TestSearch_TagsWithoutIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"results":{"tags":[{"name":"Orphan"}]}}`))
	})
	res, err := c.Search(context.Background(), signal.SearchRequest{Query: "x", Kind: signal.KindTag})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No valid tag ID found in results", res.Error)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.Search(context.Background(), signal.SearchRequest{Query: "  "})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

// ---------------------------------------------------------------------------
// Heatmap
// ---------------------------------------------------------------------------

func TestGetGrid_Parameters(t *testing.T) {
	weight := 0.5
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/insights", r.URL.Path)
		assert.Equal(t, HeatmapFilterType, q.Get("filter.type"))
		assert.Equal(t, "Ohio", q.Get("filter.location.query"))
		assert.Equal(t, "E1,E2", q.Get("signal.interests.entities"))
		assert.Equal(t, "T1", q.Get("signal.interests.tags"))
		assert.Equal(t, "45_to_54", q.Get("signal.demographics.age"))
		assert.Equal(t, "female", q.Get("signal.demographics.gender"))
		assert.Equal(t, "A1", q.Get("signal.demographics.audiences"))
		assert.Equal(t, "0.5", q.Get("signal.demographics.audiences.weight"))
		assert.Equal(t, "geohashes", q.Get("output.heatmap.boundary"))
		assert.Equal(t, "25", q.Get("take"))
		w.Write([]byte(`{"success":true,"results":{"heatmap":[]}}`))
	})

	_, err := c.GetGrid(context.Background(), signal.GridRequest{
		Location:       "Ohio",
		EntityIDs:      []string{"E1", "E2"},
		TagIDs:         []string{"T1"},
		AudienceIDs:    []string{"A1"},
		AudienceWeight: &weight,
		Demographics:   signal.Demographics{Age: signal.Age45To54, Gender: signal.GenderFemale},
		WithSignals:    true,
		Boundary:       "geohashes",
		Limit:          25,
	})
	require.NoError(t, err)
}

func TestInsightsQuery_ForwardsAgeBucketUnchanged(t *testing.T) {
	for _, age := range signal.AgeBuckets {
		q := insightsQuery(signal.GridRequest{
			Location:     "Columbus, Ohio",
			WithSignals:  true,
			Demographics: signal.Demographics{Age: age},
		})
		assert.Equal(t, age, q.Get("signal.demographics.age"), age)
	}
	q := insightsQuery(signal.GridRequest{WithSignals: true, Demographics: signal.Demographics{Age: signal.Age25To29}})
	assert.Equal(t, "25_to_29", q.Get("signal.demographics.age"))
}

func TestGetGrid_SignalsOmittedWithoutFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Empty(t, q.Get("signal.demographics.age"))
		assert.Empty(t, q.Get("signal.demographics.audiences"))
		w.Write([]byte(`{"success":true,"results":{"heatmap":[]}}`))
	})
	_, err := c.GetGrid(context.Background(), signal.GridRequest{
		Location:     "Ohio",
		EntityIDs:    []string{"E1"},
		AudienceIDs:  []string{"A1"},
		Demographics: signal.Demographics{Age: signal.Age55AndOlder},
	})
	require.NoError(t, err)
}

func TestGetGrid_Points(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"results":{"heatmap":[
			{"location":{"latitude":40.1,"longitude":-82.9,"geohash":"dphc"},"query":{"affinity":0.8,"popularity":"0.65","affinity_rank":3}},
			{"location":{"latitude":41.0,"longitude":-81.5},"query":{"affinity":null}}
		]}}`))
	})

	res, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Points, 2)

	p := res.Points[0]
	assert.Equal(t, 40.1, p.Latitude)
	assert.Equal(t, "dphc", p.Geohash)
	assert.Equal(t, 0.8, p.Affinity)
	assert.Equal(t, 0.65, p.Popularity)
	assert.Equal(t, 3, p.AffinityRank)

	assert.True(t, math.IsNaN(res.Points[1].Affinity))
	assert.True(t, math.IsNaN(res.Points[1].Popularity))
}

func TestGetGrid_ProviderFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"errors":[{"message":"location not recognized"}]}`))
	})
	res, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Atlantis", EntityIDs: []string{"E1"}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "location not recognized", res.Error)
}

// ---------------------------------------------------------------------------
// Error handling
// ---------------------------------------------------------------------------

func TestGet_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   errors.ErrorCode
	}{
		{http.StatusUnauthorized, errors.ErrCodeProviderAuthFailed},
		{http.StatusForbidden, errors.ErrCodeProviderAuthFailed},
		{http.StatusBadRequest, errors.ErrCodeProviderError},
		{http.StatusGatewayTimeout, errors.ErrCodeProviderTimeout},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"message":"nope"}`))
		})
		_, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
		assert.True(t, errors.IsCode(err, tc.code), "status %d", tc.status)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tc.status, apiErr.StatusCode)
		assert.Equal(t, "nope", apiErr.Message)
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	metrics := &recordingMetrics{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"results":{"heatmap":[]}}`))
	}, WithRetryMax(2), WithMetrics(metrics))

	res, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, metrics.counters[metricRequestTotal])
}

func TestGet_RateLimitedAfterRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryMax(1))

	_, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderRateLimited))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGet_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":`))
	})
	_, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderParseError))
}

func TestGet_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, WithTimeout(20*time.Millisecond))

	_, err := c.GetGrid(context.Background(), signal.GridRequest{Location: "Ohio", EntityIDs: []string{"E1"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeProviderTimeout))
}

func TestCalculateBackoff(t *testing.T) {
	c, err := NewClient("https://api.example.com", "key", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b3 := c.calculateBackoff(3)
	assert.GreaterOrEqual(t, b3, 300*time.Millisecond)
	assert.Less(t, b3, 375*time.Millisecond)
}

//Personal.AI order the ending
