package client

import (
	"context"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// HeatmapRequest describes one location grid query.
type HeatmapRequest struct {
	Location        string   `json:"location"`
	Entities        []string `json:"entities,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	AudienceIDs     []string `json:"audience_ids,omitempty"`
	AudienceWeight  *float64 `json:"audience_weight,omitempty"`
	Age             string   `json:"age,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	Boundary        string   `json:"boundary,omitempty"`
	BiasTrends      string   `json:"bias_trends,omitempty"`
	Limit           int      `json:"limit,omitempty"`
	RequireEntities bool     `json:"require_entities,omitempty"`
}

type rankingRequest struct {
	HeatmapRequest
	N     int      `json:"n,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// Resolved is the outcome of resolving one entity name or tag.
type Resolved struct {
	Key         string  `json:"key"`
	Kind        string  `json:"kind"`
	SearchTerm  string  `json:"search_term"`
	ID          string  `json:"id,omitempty"`
	MatchedName string  `json:"matched_name,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Success     bool    `json:"success"`
	Error       string  `json:"error,omitempty"`
}

// Resolution lists every resolution attempt of a request.
type Resolution struct {
	Entities  []Resolved `json:"entities"`
	Tags      []Resolved `json:"tags"`
	EntityIDs []string   `json:"entity_ids"`
	TagIDs    []string   `json:"tag_ids"`
	Errors    []string   `json:"errors,omitempty"`
}

// GridPoint is one annotated location.
type GridPoint struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Geohash      string  `json:"geohash"`
	Affinity     float64 `json:"affinity"`
	Popularity   float64 `json:"popularity"`
	AffinityRank int     `json:"affinity_rank"`
	HotspotScore float64 `json:"hotspot_score"`
	Segment      string  `json:"segment"`
	Strategy     string  `json:"strategy"`
}

// Grid is a location grid. Error is set when the fetch degraded to an empty
// grid.
type Grid struct {
	Name     string      `json:"name"`
	Location string      `json:"location"`
	Points   []GridPoint `json:"points"`
	Error    string      `json:"error,omitempty"`
	Dropped  int         `json:"dropped,omitempty"`
}

// HeatmapResult is the response of Locate.
type HeatmapResult struct {
	Location   string      `json:"location"`
	Resolution *Resolution `json:"resolution"`
	Grid       *Grid       `json:"grid"`
	Message    string      `json:"message"`
}

// MetricStats summarizes one metric over a grid.
type MetricStats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	HighCount int     `json:"high_count"`
}

// Tier is one hotspot bucket.
type Tier struct {
	Count       int         `json:"count"`
	Description string      `json:"description"`
	Locations   []GridPoint `json:"locations"`
}

// HotspotSummary is the digest of a grid.
type HotspotSummary struct {
	TotalPoints          int         `json:"total_data_points"`
	Affinity             MetricStats `json:"affinity_stats"`
	Popularity           MetricStats `json:"popularity_stats"`
	Premium              Tier        `json:"premium_hotspots"`
	Good                 Tier        `json:"good_hotspots"`
	Moderate             Tier        `json:"moderate_hotspots"`
	Worst                Tier        `json:"worst_hotspots"`
	SignificantLocations int         `json:"significant_locations"`
	CoveragePercentage   float64     `json:"coverage_percentage"`
	Recommendations      []string    `json:"recommendations"`
}

// HeatmapSummary is the response of Summary.
type HeatmapSummary struct {
	Location   string         `json:"location"`
	Resolution *Resolution    `json:"resolution"`
	Summary    HotspotSummary `json:"analysis"`
	Message    string         `json:"message"`
}

// RankedLocation is one entry of a ranking.
type RankedLocation struct {
	Rank         int     `json:"rank"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	HotspotScore float64 `json:"hotspot_score"`
	Affinity     float64 `json:"affinity"`
	Popularity   float64 `json:"popularity"`
	Geohash      string  `json:"geohash"`
}

// Ranking is the response of Top and Bottom.
type Ranking struct {
	Location   string      `json:"location"`
	Resolution *Resolution `json:"resolution"`
	Ranking    struct {
		TotalAnalyzed  int              `json:"total_locations_analyzed"`
		MatchingCount  int              `json:"matching_locations"`
		ScoreThreshold float64          `json:"score_threshold"`
		Locations      []RankedLocation `json:"locations"`
	} `json:"ranking"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// HeatmapClient queries location grids directly, without building an
// analysis.
type HeatmapClient struct {
	client *Client
}

// Locate fetches the annotated grid.
func (h *HeatmapClient) Locate(ctx context.Context, req HeatmapRequest) (*HeatmapResult, error) {
	var out HeatmapResult
	if err := h.client.post(ctx, apiPrefix+"/heatmap", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary fetches the hotspot digest.
func (h *HeatmapClient) Summary(ctx context.Context, req HeatmapRequest) (*HeatmapSummary, error) {
	var out HeatmapSummary
	if err := h.client.post(ctx, apiPrefix+"/heatmap/summary", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Top lists the n best locations scoring at least minScore. Zero n and a nil
// minScore use the server defaults.
func (h *HeatmapClient) Top(ctx context.Context, req HeatmapRequest, n int, minScore *float64) (*Ranking, error) {
	return h.rank(ctx, "/heatmap/top", rankingRequest{HeatmapRequest: req, N: n, Score: minScore})
}

// Bottom lists the n worst locations scoring at most maxScore.
func (h *HeatmapClient) Bottom(ctx context.Context, req HeatmapRequest, n int, maxScore *float64) (*Ranking, error) {
	return h.rank(ctx, "/heatmap/bottom", rankingRequest{HeatmapRequest: req, N: n, Score: maxScore})
}

func (h *HeatmapClient) rank(ctx context.Context, path string, req rankingRequest) (*Ranking, error) {
	var out Ranking
	if err := h.client.post(ctx, apiPrefix+path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
