package qloo

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// metric accepts numbers, quoted numbers and null.
type metric json.RawMessage

func (m *metric) UnmarshalJSON(b []byte) error {
	*m = append((*m)[:0], b...)
	return nil
}

func (m metric) float() float64 { return signal.ParseMetric(string(m)) }

type searchEntity struct {
	EntityID   string   `json:"entity_id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Subtype    string   `json:"subtype"`
	Popularity float64  `json:"popularity"`
}

type searchResponse struct {
	Results []searchEntity `json:"results"`
}

type tagItem struct {
	ID      string   `json:"id"`
	TagID   string   `json:"tag_id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Subtype string   `json:"subtype"`
	Types   []string `json:"types"`
}

type tagsResponse struct {
	Success bool `json:"success"`
	Results struct {
		Tags []tagItem `json:"tags"`
	} `json:"results"`
}

type heatmapPoint struct {
	Location struct {
		Latitude  metric `json:"latitude"`
		Longitude metric `json:"longitude"`
		Geohash   string `json:"geohash"`
	} `json:"location"`
	Query struct {
		Affinity     metric `json:"affinity"`
		Popularity   metric `json:"popularity"`
		AffinityRank int    `json:"affinity_rank"`
	} `json:"query"`
}

type insightsResponse struct {
	Success bool `json:"success"`
	Results struct {
		Heatmap []heatmapPoint `json:"heatmap"`
	} `json:"results"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s searchEntity) match() signal.Match {
	m := signal.Match{ID: s.EntityID, Name: s.Name, Subtype: s.Subtype, Types: s.Types, Score: s.Popularity}
	if len(s.Types) > 0 {
		m.Type = s.Types[0]
	}
	return m
}

func (t tagItem) match() signal.Match {
	id := t.ID
	if id == "" {
		id = t.TagID
	}
	m := signal.Match{ID: id, Name: t.Name, Type: t.Type, Subtype: t.Subtype, Types: t.Types}
	if m.Type == "" && len(t.Types) > 0 {
		m.Type = t.Types[0]
	}
	return m
}

func (p heatmapPoint) point() signal.LocationPoint {
	return signal.LocationPoint{
		Latitude:     p.Location.Latitude.float(),
		Longitude:    p.Location.Longitude.float(),
		Geohash:      p.Location.Geohash,
		Affinity:     p.Query.Affinity.float(),
		Popularity:   p.Query.Popularity.float(),
		AffinityRank: p.Query.AffinityRank,
	}
}

func (r insightsResponse) errorMessage() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

//Personal.AI order the ending
