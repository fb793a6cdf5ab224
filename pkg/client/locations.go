package client

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// IdentifiedLocations is a saved, tagged location set.
type IdentifiedLocations struct {
	Tag            string       `json:"tag"`
	Description    string       `json:"description"`
	AnalysisKey    string       `json:"analysis_key,omitempty"`
	Coordinates    [][2]float64 `json:"coordinates"`
	TotalLocations int          `json:"total_locations"`
	FiltersApplied []string     `json:"filters_applied"`
	CreatedAt      time.Time    `json:"created_timestamp"`
}

// HistoryEntry is one recently saved set.
type HistoryEntry struct {
	Tag            string    `json:"tag"`
	TotalLocations int       `json:"total_locations"`
	Created        time.Time `json:"created"`
}

// LocationHistory lists recent sets and names the current one.
type LocationHistory struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	History []HistoryEntry `json:"location_history"`
	Current string         `json:"current_identified"`
}

// Footprint is the convex hull of a set.
type Footprint struct {
	Tag      string     `json:"tag"`
	WKT      string     `json:"wkt"`
	Centroid [2]float64 `json:"centroid"`
	Bounds   [4]float64 `json:"bounds"`
	Area     float64    `json:"area"`
}

// Polygon is the geometry of a set. Footprint is nil below three points.
// GeoJSON is a FeatureCollection, returned undecoded.
type Polygon struct {
	Tag         string          `json:"tag"`
	Coordinates [][2]float64    `json:"coordinates"`
	Footprint   *Footprint      `json:"footprint,omitempty"`
	GeoJSON     json.RawMessage `json:"geojson"`
}

// LocationsClient reads identified location sets.
type LocationsClient struct {
	client *Client
}

// Get returns the set saved under tag, or the most recent set for an empty
// tag.
func (l *LocationsClient) Get(ctx context.Context, tag string) (*IdentifiedLocations, error) {
	path := apiPrefix + "/locations"
	if tag != "" {
		path += "/" + url.PathEscape(tag)
	}
	var out IdentifiedLocations
	if err := l.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists recently saved sets.
func (l *LocationsClient) History(ctx context.Context) (*LocationHistory, error) {
	var out LocationHistory
	if err := l.client.get(ctx, apiPrefix+"/locations/history", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Polygon returns the geometry of the set saved under tag.
func (l *LocationsClient) Polygon(ctx context.Context, tag string) (*Polygon, error) {
	var out Polygon
	if err := l.client.get(ctx, apiPrefix+"/locations/"+url.PathEscape(tag)+"/polygon", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
