package heatmap

import (
	"fmt"
	"math"
	"sort"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// Hotspot tiers.
const (
	PremiumThreshold   = 0.8
	GoodScoreThreshold = 0.6
	ModerateScoreFloor = 0.4
	DefaultTopN        = 10
	DefaultMinScore    = 0.5
	DefaultMaxScore    = 0.5
	premiumSampleSize  = 5
	goodSampleSize     = 5
	moderateSampleSize = 3
	worstSampleSize    = 5
)

// MetricStats summarizes one metric over a grid.
type MetricStats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	HighCount int     `json:"high_count"`
}

// Tier is one hotspot bucket with its leading locations.
type Tier struct {
	Count       int                    `json:"count"`
	Description string                 `json:"description"`
	Locations   []signal.LocationPoint `json:"locations"`
}

// HotspotSummary is the strategic digest of a single grid.
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

// RankedLocation is one entry of a top or bottom list.
type RankedLocation struct {
	Rank         int     `json:"rank"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	HotspotScore float64 `json:"hotspot_score"`
	Affinity     float64 `json:"affinity"`
	Popularity   float64 `json:"popularity"`
	Geohash      string  `json:"geohash"`
}

// Ranking is a filtered, ordered slice of a grid.
type Ranking struct {
	TotalAnalyzed  int              `json:"total_locations_analyzed"`
	MatchingCount  int              `json:"matching_locations"`
	ScoreThreshold float64          `json:"score_threshold"`
	Locations      []RankedLocation `json:"locations"`
}

func stats(values []float64) MetricStats {
	var s MetricStats
	if len(values) == 0 {
		return s
	}
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
		if v > PremiumThreshold {
			s.HighCount++
		}
	}
	s.Avg = sum / float64(len(values))
	return s
}

func byScore(points []signal.LocationPoint, desc bool) {
	sort.SliceStable(points, func(i, j int) bool {
		if desc {
			return points[i].HotspotScore > points[j].HotspotScore
		}
		return points[i].HotspotScore < points[j].HotspotScore
	})
}

func head(points []signal.LocationPoint, n int) []signal.LocationPoint {
	if len(points) > n {
		points = points[:n]
	}
	return append([]signal.LocationPoint{}, points...)
}

// Summarize buckets the grid into hotspot tiers. Zero-valued metrics are left
// out of the stats.
func Summarize(g *signal.Grid) HotspotSummary {
	if g == nil {
		g = &signal.Grid{}
	}
	var aff, pop []float64
	var premium, good, moderate, worst []signal.LocationPoint
	for _, p := range g.Points {
		if p.Affinity != 0 {
			aff = append(aff, p.Affinity)
		}
		if p.Popularity != 0 {
			pop = append(pop, p.Popularity)
		}
		isPremium := p.Affinity > PremiumThreshold && p.Popularity > PremiumThreshold
		if isPremium {
			premium = append(premium, p)
		}
		if p.HotspotScore > GoodScoreThreshold && !isPremium {
			good = append(good, p)
		}
		if p.HotspotScore >= ModerateScoreFloor && p.HotspotScore <= GoodScoreThreshold {
			moderate = append(moderate, p)
		}
		if p.HotspotScore < ModerateScoreFloor {
			worst = append(worst, p)
		}
	}
	byScore(premium, true)
	byScore(good, true)
	byScore(moderate, true)
	byScore(worst, false)

	n := g.Len()
	s := HotspotSummary{
		TotalPoints: n,
		Affinity:    stats(aff),
		Popularity:  stats(pop),
		Premium: Tier{Count: len(premium), Locations: head(premium, premiumSampleSize),
			Description: "High affinity (>0.8) AND high popularity (>0.8)"},
		Good: Tier{Count: len(good), Locations: head(good, goodSampleSize),
			Description: "Strong combined performance (score >0.6)"},
		Moderate: Tier{Count: len(moderate), Locations: head(moderate, moderateSampleSize),
			Description: "Moderate performance (score 0.4-0.6)"},
		Worst: Tier{Count: len(worst), Locations: head(worst, worstSampleSize),
			Description: "Poor performance (score <0.4) - areas to avoid or improve"},
		SignificantLocations: len(premium) + len(good),
	}
	if n > 0 {
		s.CoveragePercentage = float64(s.SignificantLocations) / float64(n) * 100
	}

	if len(premium) > 0 {
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("PRIORITY FOCUS: %d premium locations identified for immediate attention", len(premium)))
	}
	if len(good) > 0 {
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("SECONDARY TARGETS: %d good locations for expansion or optimization", len(good)))
	}
	if len(moderate) > 0 {
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("MONITORING: %d moderate locations for future consideration", len(moderate)))
	}
	if len(worst) > 0 {
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("AVOID/IMPROVE: %d poor performing locations that need attention or should be avoided", len(worst)))
	}
	s.Recommendations = append(s.Recommendations,
		fmt.Sprintf("MARKET COVERAGE: %.1f%% of analyzed area shows significant potential", s.CoveragePercentage))
	if len(worst) > 0 && n > 0 {
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("RISK AREAS: %.1f%% of locations show poor performance and should be carefully evaluated",
				float64(len(worst))/float64(n)*100))
	}
	return s
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func ranked(points []signal.LocationPoint) []RankedLocation {
	out := make([]RankedLocation, 0, len(points))
	for i, p := range points {
		out = append(out, RankedLocation{
			Rank:         i + 1,
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			HotspotScore: round3(p.HotspotScore),
			Affinity:     round3(p.Affinity),
			Popularity:   round3(p.Popularity),
			Geohash:      p.Geohash,
		})
	}
	return out
}

// Top returns up to n points scoring at least minScore, best first.
func Top(g *signal.Grid, n int, minScore float64) Ranking {
	if g == nil {
		g = &signal.Grid{}
	}
	if n <= 0 {
		n = DefaultTopN
	}
	var keep []signal.LocationPoint
	for _, p := range g.Points {
		if p.HotspotScore >= minScore {
			keep = append(keep, p)
		}
	}
	byScore(keep, true)
	return Ranking{TotalAnalyzed: g.Len(), MatchingCount: len(keep), ScoreThreshold: minScore, Locations: ranked(head(keep, n))}
}

// Bottom returns up to n points scoring at most maxScore, worst first.
func Bottom(g *signal.Grid, n int, maxScore float64) Ranking {
	if g == nil {
		g = &signal.Grid{}
	}
	if n <= 0 {
		n = DefaultTopN
	}
	var keep []signal.LocationPoint
	for _, p := range g.Points {
		if p.HotspotScore <= maxScore {
			keep = append(keep, p)
		}
	}
	byScore(keep, false)
	return Ranking{TotalAnalyzed: g.Len(), MatchingCount: len(keep), ScoreThreshold: maxScore, Locations: ranked(head(keep, n))}
}

//Personal.AI order the ending
