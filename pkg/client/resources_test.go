package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method string
	path   string
	query  string
	body   []byte
}

type recorded struct {
	mu  sync.Mutex
	req request
}

// recordingClient answers every request with reply and records the last one.
func recordingClient(t *testing.T, reply string) (*Client, *recorded) {
	rec := &recorded{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.req = request{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery, body: body}
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	})
	return c, rec
}

func (r *recorded) last() request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.req
}

func TestHeatmapClient_Locate(t *testing.T) {
	c, rec := recordingClient(t, `{"location":"Columbus, Ohio","grid":{"name":"location","points":[{"latitude":1,"longitude":2,"affinity":0.9,"segment":"premium"}]}}`)

	res, err := c.Heatmap().Locate(context.Background(), HeatmapRequest{Location: "Columbus, Ohio", Tags: []string{"jazz"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.last().method)
	assert.Equal(t, "/api/v1/heatmap", rec.last().path)
	assert.JSONEq(t, `{"location":"Columbus, Ohio","tags":["jazz"]}`, string(rec.last().body))
	require.NotNil(t, res.Grid)
	require.Len(t, res.Grid.Points, 1)
	assert.Equal(t, "premium", res.Grid.Points[0].Segment)
}

func TestHeatmapClient_TopSendsRankingFields(t *testing.T) {
	c, rec := recordingClient(t, `{"location":"x","ranking":{"matching_locations":1,"locations":[{"rank":1,"hotspot_score":0.7}]}}`)

	minScore := 0.5
	res, err := c.Heatmap().Top(context.Background(), HeatmapRequest{Location: "x"}, 5, &minScore)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/heatmap/top", rec.last().path)
	assert.JSONEq(t, `{"location":"x","n":5,"score":0.5}`, string(rec.last().body))
	assert.Equal(t, 1, res.Ranking.MatchingCount)
	assert.Equal(t, 0.7, res.Ranking.Locations[0].HotspotScore)
}

func TestHeatmapClient_BottomOmitsDefaults(t *testing.T) {
	c, rec := recordingClient(t, `{}`)

	_, err := c.Heatmap().Bottom(context.Background(), HeatmapRequest{Location: "x"}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/heatmap/bottom", rec.last().path)
	assert.JSONEq(t, `{"location":"x"}`, string(rec.last().body))
}

func TestHeatmapClient_Summary(t *testing.T) {
	c, rec := recordingClient(t, `{"analysis":{"total_data_points":4,"coverage_percentage":50,"premium_hotspots":{"count":1}}}`)

	res, err := c.Heatmap().Summary(context.Background(), HeatmapRequest{Location: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/heatmap/summary", rec.last().path)
	assert.Equal(t, 4, res.Summary.TotalPoints)
	assert.Equal(t, 1, res.Summary.Premium.Count)
}

func TestAnalysesClient_Create(t *testing.T) {
	c, rec := recordingClient(t, `{"status":"success","artifact_filename":"a.json","analysis_summary":{"total_locations":3,"quadrants":[{"strategy":"Rally the Base","count":2}]}}`)

	res, err := c.Analyses().Create(context.Background(), AnalysisRequest{
		Candidate: "Jane", Opponent: "John", Base: "Progressive", Location: "Ohio",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.last().method)
	assert.Equal(t, "/api/v1/analyses", rec.last().path)
	assert.JSONEq(t, `{"candidate":"Jane","opponent":"John","base":"Progressive","location":"Ohio"}`, string(rec.last().body))
	assert.Equal(t, "a.json", res.ArtifactKey)
	assert.Equal(t, 3, res.Summary.TotalLocations)
	assert.Equal(t, "Rally the Base", res.Summary.Quadrants[0].Strategy)
}

func TestAnalysesClient_List(t *testing.T) {
	c, rec := recordingClient(t, `{"analyses":[{"key":"k1","rows":3},{"key":"k2"}],"count":2}`)

	metas, err := c.Analyses().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/analyses", rec.last().path)
	assert.Equal(t, "limit=10", rec.last().query)
	require.Len(t, metas, 2)
	assert.Equal(t, "k1", metas[0].Key)
	assert.Equal(t, 3, metas[0].Rows)

	_, err = c.Analyses().List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, rec.last().query)
}

func TestAnalysesClient_Views(t *testing.T) {
	c, rec := recordingClient(t, `{}`)
	ctx := context.Background()
	a := c.Analyses()

	cases := []struct {
		call func() error
		path string
	}{
		{func() error { _, err := a.Summary(ctx, ""); return err }, "/api/v1/analyses/latest"},
		{func() error { _, err := a.Structure(ctx, "k1"); return err }, "/api/v1/analyses/k1/structure"},
		{func() error { _, err := a.Rally(ctx, ""); return err }, "/api/v1/analyses/latest/rally"},
		{func() error { _, err := a.Goldmine(ctx, "k1"); return err }, "/api/v1/analyses/k1/goldmine"},
		{func() error { _, err := a.Report(ctx, ""); return err }, "/api/v1/analyses/latest/report"},
	}
	for _, tc := range cases {
		require.NoError(t, tc.call())
		assert.Equal(t, http.MethodGet, rec.last().method)
		assert.Equal(t, tc.path, rec.last().path)
	}
}

func TestAnalysesClient_FilterKeepsCriteriaOrder(t *testing.T) {
	c, rec := recordingClient(t, `{"status":"warning","total_locations":0,"saved":false,"steps":[{"filter":"min_affinity","before":4,"after":0}]}`)

	res, err := c.Analyses().Filter(context.Background(), "", FilterRequest{
		Tag: "strong",
		Criteria: Criteria{
			{Key: "min_popularity", Value: 0.2},
			{Key: "segment", Value: []string{"premium", "good"}},
			{Key: "min_affinity", Value: 0.6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/analyses/latest/filter", rec.last().path)
	assert.Equal(t, `{"criteria":{"min_popularity":0.2,"segment":["premium","good"],"min_affinity":0.6},"tag":"strong"}`, string(rec.last().body))
	assert.False(t, res.Saved)
	assert.Equal(t, "warning", res.Status)
	assert.Equal(t, 4, res.Steps[0].Before)
}

func TestCriteria_MarshalEmpty(t *testing.T) {
	b, err := json.Marshal(Criteria(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestLocationsClient(t *testing.T) {
	c, rec := recordingClient(t, `{"tag":"a b","coordinates":[[1,2],[3,4]],"total_locations":2}`)
	ctx := context.Background()
	l := c.Locations()

	set, err := l.Get(ctx, "a b")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/locations/a%20b", rec.last().path)
	assert.Equal(t, [2]float64{3, 4}, set.Coordinates[1])

	_, err = l.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/locations", rec.last().path)

	_, err = l.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/locations/history", rec.last().path)

	_, err = l.Polygon(ctx, "strong")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/locations/strong/polygon", rec.last().path)
}

//Personal.AI order the ending
