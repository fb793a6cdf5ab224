package analysis

import (
	"math"
	"strings"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// Column names of the core record.
const (
	ColLatitude             = "latitude"
	ColLongitude            = "longitude"
	ColGeohash              = "geohash"
	ColAffinity             = "affinity"
	ColPopularity           = "popularity"
	ColAffinityRank         = "affinity_rank"
	ColHotspotScore         = "hotspot_score"
	ColSegment              = "segment"
	ColStrategy             = "strategy"
	ColOpponentPopularity   = "opponent_popularity"
	ColNetPopularity        = "net_popularity"
	ColPopularityStatus     = "popularity_status"
	ColBasePopularity       = "base_popularity"
	ColNetBasePopularity    = "net_base_popularity"
	ColBasePopularityStatus = "base_popularity_status"
)

// CoreColumns lists the fixed columns in table order.
var CoreColumns = []string{
	ColLatitude, ColLongitude, ColGeohash, ColAffinity, ColPopularity,
	ColAffinityRank, ColHotspotScore, ColSegment, ColStrategy,
	ColOpponentPopularity, ColNetPopularity, ColPopularityStatus,
	ColBasePopularity, ColNetBasePopularity, ColBasePopularityStatus,
}

// NormalizeIssue turns a caller-supplied tag name into the identifier used
// in column names.
func NormalizeIssue(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// IssueColumn is the popularity column of an issue, e.g. "tag_climate_change".
func IssueColumn(norm string) string { return "tag_" + norm }

// IssueBaselineColumn holds the base-audience popularity for an issue.
func IssueBaselineColumn(norm string) string { return "base_" + norm + "_popularity" }

// IssueNetColumn holds the issue net value.
func IssueNetColumn(norm string) string { return "net_" + norm + "_popularity" }

// IssueStatusColumn holds the issue status label.
func IssueStatusColumn(norm string) string { return "issue_" + norm + "_popularity_status" }

// IssueMetrics are the derived values of one issue at one location.
type IssueMetrics struct {
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
	// Baseline is NaN unless a base-audience grid was fetched for the issue.
	Baseline      float64 `json:"baseline"`
	NetPopularity float64 `json:"net_popularity"`
	Status        string  `json:"status"`
}

// Issues is an ordered mapping from normalized issue name to metrics.
type Issues []IssueMetrics

// Get looks up an issue by normalized name.
func (is Issues) Get(name string) (IssueMetrics, bool) {
	for _, m := range is {
		if m.Name == name {
			return m, true
		}
	}
	return IssueMetrics{}, false
}

// Set replaces or appends metrics, preserving insertion order.
func (is Issues) Set(m IssueMetrics) Issues {
	for i := range is {
		if is[i].Name == m.Name {
			is[i] = m
			return is
		}
	}
	return append(is, m)
}

// Names returns the issue names in order.
func (is Issues) Names() []string {
	out := make([]string, len(is))
	for i, m := range is {
		out[i] = m.Name
	}
	return out
}

// CompositeRecord is one row of the composite table.
type CompositeRecord struct {
	signal.LocationPoint

	OpponentPopularity   float64 `json:"opponent_popularity"`
	NetPopularity        float64 `json:"net_popularity"`
	PopularityStatus     string  `json:"popularity_status"`
	BasePopularity       float64 `json:"base_popularity"`
	NetBasePopularity    float64 `json:"net_base_popularity"`
	BasePopularityStatus string  `json:"base_popularity_status"`
	Issues               Issues  `json:"issues"`
}

// NewRecord seeds a record from the primary point with every comparison
// value missing.
func NewRecord(p signal.LocationPoint) CompositeRecord {
	nan := math.NaN()
	return CompositeRecord{
		LocationPoint:        p,
		OpponentPopularity:   nan,
		NetPopularity:        nan,
		PopularityStatus:     StatusUnknown,
		BasePopularity:       nan,
		NetBasePopularity:    nan,
		BasePopularityStatus: StatusUnknown,
	}
}

// Coordinate returns [lat, lon].
func (r CompositeRecord) Coordinate() [2]float64 {
	return [2]float64{r.Latitude, r.Longitude}
}

//Personal.AI order the ending
