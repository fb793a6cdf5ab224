package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// AnalysisRequest starts a composite candidate analysis.
type AnalysisRequest struct {
	Candidate string   `json:"candidate"`
	Opponent  string   `json:"opponent"`
	Base      string   `json:"base"`
	Issues    []string `json:"issues,omitempty"`
	Location  string   `json:"location"`
	Age       string   `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
}

// AnalysisMetadata identifies a stored analysis.
type AnalysisMetadata struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Version   string    `json:"version,omitempty"`
	Candidate string    `json:"candidate"`
	Opponent  string    `json:"opponent"`
	Base      string    `json:"base"`
	Location  string    `json:"location"`
	Age       string    `json:"age"`
	Gender    string    `json:"gender"`
	Tags      []string  `json:"tags"`
	Skipped   []string  `json:"skipped_sources,omitempty"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}

// QuadrantCount is the size of one strategy quadrant.
type QuadrantCount struct {
	Strategy    string  `json:"strategy"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
	Description string  `json:"description"`
}

// AnalysisSummary is the headline view of an analysis.
type AnalysisSummary struct {
	Metadata       AnalysisMetadata `json:"metadata"`
	TotalLocations int              `json:"total_locations"`
	TotalColumns   int              `json:"total_columns"`
	Quadrants      []QuadrantCount  `json:"quadrants"`
}

// AnalysisResult is the response of Create.
type AnalysisResult struct {
	Status      string          `json:"status"`
	Message     string          `json:"message"`
	ArtifactKey string          `json:"artifact_filename"`
	Version     string          `json:"artifact_version"`
	Summary     AnalysisSummary `json:"analysis_summary"`
	NextSteps   []string        `json:"next_steps"`
}

// DataStructure lists the columns of an analysis and the value counts of its
// categorical columns.
type DataStructure struct {
	TotalRows    int                       `json:"total_rows"`
	TotalColumns int                       `json:"total_columns"`
	Columns      []string                  `json:"columns"`
	ValueCounts  map[string]map[string]int `json:"value_counts"`
	IssueColumns []string                  `json:"issue_columns"`
}

// TargetLocation is a prioritized location in a targeting report.
type TargetLocation struct {
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Affinity          float64  `json:"affinity"`
	Popularity        *float64 `json:"popularity,omitempty"`
	BasePopularity    *float64 `json:"base_popularity,omitempty"`
	NetBasePopularity *float64 `json:"net_base_popularity,omitempty"`
	NetPopularity     *float64 `json:"net_popularity,omitempty"`
	Geohash           string   `json:"geohash"`
}

// RallyReport breaks down the Rally the Base quadrant. The nested sections
// are returned undecoded.
type RallyReport struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	Recommendation   string           `json:"recommendation,omitempty"`
	Metadata         AnalysisMetadata `json:"analysis_metadata"`
	SwingVoters      json.RawMessage  `json:"swing_voters,omitempty"`
	BaseIntroduction json.RawMessage  `json:"base_introduction,omitempty"`
	IssueTargeting   json.RawMessage  `json:"issue_targeting"`
	Summary          json.RawMessage  `json:"rally_base_summary,omitempty"`
	Recommendations  json.RawMessage  `json:"campaign_recommendations,omitempty"`
	NextSteps        []string         `json:"next_steps,omitempty"`
}

// GoldmineReport lists the locations where the candidate trails their party.
type GoldmineReport struct {
	Status             string           `json:"status"`
	Message            string           `json:"message"`
	Metadata           AnalysisMetadata `json:"analysis_metadata"`
	TotalLocations     int              `json:"total_hidden_gold_mine_base_locations"`
	TotalSegments      int              `json:"total_segments"`
	PercentageToTarget float64          `json:"percentage_of_total_segments_to_target"`
	TopTargets         []TargetLocation `json:"top_priority_targets"`
	NextSteps          []string         `json:"next_steps"`
}

// Report describes a stored campaign report. Markdown holds the body.
type Report struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filename string `json:"report_filename"`
	Version  string `json:"report_version"`
	Summary  struct {
		SegmentsAnalyzed int `json:"segments_analyzed"`
		TotalLocations   int `json:"total_locations"`
		RallyBase        int `json:"rally_base_locations"`
		HiddenGoldmine   int `json:"hidden_goldmine_locations"`
		BringThemOver    int `json:"bring_them_over_locations"`
		DeepConversion   int `json:"deep_conversion_locations"`
	} `json:"report_summary"`
	FileSizeKB float64  `json:"file_size_kb"`
	Contains   []string `json:"contains"`
	NextSteps  []string `json:"next_steps"`
	Markdown   string   `json:"markdown,omitempty"`
}

// Criterion is one filter step. Value is a number for min_affinity and
// min_popularity, and a string or list of strings for a categorical column.
type Criterion struct {
	Key   string
	Value interface{}
}

// Criteria is an ordered filter. Steps apply in slice order.
type Criteria []Criterion

// MarshalJSON writes the criteria as an object whose keys keep slice order.
func (c Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, crit := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(crit.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(crit.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FilterRequest narrows an analysis to a tagged location set.
type FilterRequest struct {
	Criteria Criteria `json:"criteria"`
	Tag      string   `json:"tag"`
}

// FilterStep records the row count around one applied filter.
type FilterStep struct {
	Filter string `json:"filter"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// FilterResult is the outcome of a filter. Saved is false, and Status is
// "warning", when nothing matched.
type FilterResult struct {
	Status           string       `json:"status"`
	Message          string       `json:"message"`
	Tag              string       `json:"tag,omitempty"`
	Coordinates      [][2]float64 `json:"coordinates,omitempty"`
	TotalLocations   int          `json:"total_locations"`
	AppliedFilters   []string     `json:"filters_applied"`
	Skipped          []string     `json:"skipped_columns,omitempty"`
	Steps            []FilterStep `json:"steps,omitempty"`
	AvailableColumns []string     `json:"available_columns,omitempty"`
	AnalysisKey      string       `json:"analysis_key"`
	Description      string       `json:"description,omitempty"`
	Sample           [][2]float64 `json:"coordinates_sample,omitempty"`
	Saved            bool         `json:"saved"`
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// AnalysesClient builds and reads composite analyses. Every key argument
// may be empty to address the most recent analysis.
type AnalysesClient struct {
	client *Client
}

// Create runs a new analysis.
func (a *AnalysesClient) Create(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	var out AnalysisResult
	if err := a.client.post(ctx, apiPrefix+"/analyses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns up to limit stored analyses, newest first.
func (a *AnalysesClient) List(ctx context.Context, limit int) ([]AnalysisMetadata, error) {
	path := apiPrefix + "/analyses"
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}
	var out struct {
		Analyses []AnalysisMetadata `json:"analyses"`
	}
	if err := a.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Analyses, nil
}

// Summary returns the quadrant counts of an analysis.
func (a *AnalysesClient) Summary(ctx context.Context, key string) (*AnalysisSummary, error) {
	var out AnalysisSummary
	if err := a.client.get(ctx, keyPath(key), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Structure returns the column layout of an analysis.
func (a *AnalysesClient) Structure(ctx context.Context, key string) (*DataStructure, error) {
	var out DataStructure
	if err := a.client.get(ctx, keyPath(key)+"/structure", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rally returns the Rally the Base breakdown.
func (a *AnalysesClient) Rally(ctx context.Context, key string) (*RallyReport, error) {
	var out RallyReport
	if err := a.client.get(ctx, keyPath(key)+"/rally", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Goldmine returns the hidden goldmine locations.
func (a *AnalysesClient) Goldmine(ctx context.Context, key string) (*GoldmineReport, error) {
	var out GoldmineReport
	if err := a.client.get(ctx, keyPath(key)+"/goldmine", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report generates and stores the campaign report.
func (a *AnalysesClient) Report(ctx context.Context, key string) (*Report, error) {
	var out Report
	if err := a.client.get(ctx, keyPath(key)+"/report", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Filter narrows an analysis and saves the result under req.Tag.
func (a *AnalysesClient) Filter(ctx context.Context, key string, req FilterRequest) (*FilterResult, error) {
	var out FilterResult
	if err := a.client.post(ctx, keyPath(key)+"/filter", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
