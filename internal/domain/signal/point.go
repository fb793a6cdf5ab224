// Package signal models the per-location affinity and popularity samples
// returned by the cultural-intelligence provider, together with the
// quadrant segmentation every downstream analysis relies on.
package signal

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// HotspotAffinityWeight and HotspotPopularityWeight are the fixed weights of
// the hotspot score.
const (
	HotspotAffinityWeight   = 0.6
	HotspotPopularityWeight = 0.4

	// GeohashPrecision is used when the provider omits a geohash.
	GeohashPrecision = 7
)

// Key is the exact-match join key shared by all grids. No tolerance is
// applied: two sources only meet where the provider returned bit-identical
// coordinates.
type Key struct {
	Lat float64
	Lon float64
}

// Less orders keys by latitude then longitude.
func (k Key) Less(o Key) bool {
	if k.Lat != o.Lat {
		return k.Lat < o.Lat
	}
	return k.Lon < o.Lon
}

// SortKeys sorts keys in place in (lat, lon) order.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// LocationPoint is one geospatial sample of a signal.
type LocationPoint struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Geohash      string   `json:"geohash"`
	Affinity     float64  `json:"affinity"`
	Popularity   float64  `json:"popularity"`
	AffinityRank int      `json:"affinity_rank"`
	HotspotScore float64  `json:"hotspot_score"`
	Segment      Segment  `json:"segment"`
	Strategy     Strategy `json:"strategy"`
}

// Key returns the join key of the point.
func (p LocationPoint) Key() Key { return Key{Lat: p.Latitude, Lon: p.Longitude} }

// Valid reports whether the coordinates and both metrics are present.
func (p LocationPoint) Valid() bool {
	for _, v := range [...]float64{p.Latitude, p.Longitude, p.Affinity, p.Popularity} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Annotate fills the derived fields: hotspot score, segment, strategy and a
// geohash when the provider did not send one.
func (p *LocationPoint) Annotate() {
	p.HotspotScore = HotspotScore(p.Affinity, p.Popularity)
	p.Segment, p.Strategy = Classify(p.Affinity, p.Popularity)
	if p.Geohash == "" {
		p.Geohash = geohash.EncodeWithPrecision(p.Latitude, p.Longitude, GeohashPrecision)
	}
}

// HotspotScore combines affinity and popularity with fixed weights.
func HotspotScore(affinity, popularity float64) float64 {
	return affinity*HotspotAffinityWeight + popularity*HotspotPopularityWeight
}

// ParseMetric coerces a raw provider value into a float. Quoted numbers are
// accepted; anything unparseable, including null, yields NaN.
func ParseMetric(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

//Personal.AI order the ending
