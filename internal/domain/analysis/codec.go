package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// nullable encodes NaN and infinities as JSON null.
type nullable float64

func (n nullable) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *nullable) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = nullable(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = nullable(f)
	return nil
}

type wireIssue struct {
	Name          string   `json:"name"`
	Popularity    nullable `json:"popularity"`
	Baseline      nullable `json:"baseline"`
	NetPopularity nullable `json:"net_popularity"`
	Status        string   `json:"status"`
}

type wireRecord struct {
	Latitude             float64         `json:"latitude"`
	Longitude            float64         `json:"longitude"`
	Geohash              string          `json:"geohash"`
	Affinity             nullable        `json:"affinity"`
	Popularity           nullable        `json:"popularity"`
	AffinityRank         int             `json:"affinity_rank"`
	HotspotScore         nullable        `json:"hotspot_score"`
	Segment              signal.Segment  `json:"segment"`
	Strategy             signal.Strategy `json:"strategy"`
	OpponentPopularity   nullable        `json:"opponent_popularity"`
	NetPopularity        nullable        `json:"net_popularity"`
	PopularityStatus     string          `json:"popularity_status"`
	BasePopularity       nullable        `json:"base_popularity"`
	NetBasePopularity    nullable        `json:"net_base_popularity"`
	BasePopularityStatus string          `json:"base_popularity_status"`
	Issues               []wireIssue     `json:"issues"`
}

// MarshalJSON writes missing values as null.
func (r CompositeRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		Latitude:             r.Latitude,
		Longitude:            r.Longitude,
		Geohash:              r.Geohash,
		Affinity:             nullable(r.Affinity),
		Popularity:           nullable(r.Popularity),
		AffinityRank:         r.AffinityRank,
		HotspotScore:         nullable(r.HotspotScore),
		Segment:              r.Segment,
		Strategy:             r.Strategy,
		OpponentPopularity:   nullable(r.OpponentPopularity),
		NetPopularity:        nullable(r.NetPopularity),
		PopularityStatus:     r.PopularityStatus,
		BasePopularity:       nullable(r.BasePopularity),
		NetBasePopularity:    nullable(r.NetBasePopularity),
		BasePopularityStatus: r.BasePopularityStatus,
		Issues:               make([]wireIssue, 0, len(r.Issues)),
	}
	for _, m := range r.Issues {
		w.Issues = append(w.Issues, wireIssue{
			Name:          m.Name,
			Popularity:    nullable(m.Popularity),
			Baseline:      nullable(m.Baseline),
			NetPopularity: nullable(m.NetPopularity),
			Status:        m.Status,
		})
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads null back as NaN.
func (r *CompositeRecord) UnmarshalJSON(b []byte) error {
	nan := nullable(math.NaN())
	w := wireRecord{
		OpponentPopularity: nan, NetPopularity: nan,
		BasePopularity: nan, NetBasePopularity: nan,
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = CompositeRecord{
		LocationPoint: signal.LocationPoint{
			Latitude:     w.Latitude,
			Longitude:    w.Longitude,
			Geohash:      w.Geohash,
			Affinity:     float64(w.Affinity),
			Popularity:   float64(w.Popularity),
			AffinityRank: w.AffinityRank,
			HotspotScore: float64(w.HotspotScore),
			Segment:      w.Segment,
			Strategy:     w.Strategy,
		},
		OpponentPopularity:   float64(w.OpponentPopularity),
		NetPopularity:        float64(w.NetPopularity),
		PopularityStatus:     w.PopularityStatus,
		BasePopularity:       float64(w.BasePopularity),
		NetBasePopularity:    float64(w.NetBasePopularity),
		BasePopularityStatus: w.BasePopularityStatus,
	}
	for _, m := range w.Issues {
		r.Issues = append(r.Issues, IssueMetrics{
			Name:          m.Name,
			Popularity:    float64(m.Popularity),
			Baseline:      float64(m.Baseline),
			NetPopularity: float64(m.NetPopularity),
			Status:        m.Status,
		})
	}
	return nil
}

// Encode serializes a table into the artifact blob format.
func Encode(t *Table) ([]byte, error) { return json.Marshal(t) }

// Decode parses an artifact blob.
func Decode(b []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

//Personal.AI order the ending
