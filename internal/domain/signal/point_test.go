package signal

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		aff, pop float64
		seg      Segment
		strategy Strategy
	}{
		{"both at threshold", 0.6, 0.6, SegmentHAHP, StrategyRallyTheBase},
		{"high affinity low popularity", 0.9, 0.2, SegmentHALP, StrategyHiddenGoldmine},
		{"low affinity high popularity", 0.59, 0.95, SegmentLAHP, StrategyBringThemOver},
		{"low low", 0.1, 0.1, SegmentLALP, StrategyDeepConversion},
		{"just below on affinity", 0.59, 0.59, SegmentLALP, StrategyDeepConversion},
		{"nan affinity", math.NaN(), 0.7, SegmentUnknown, StrategyNone},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seg, st := Classify(tt.aff, tt.pop)
			assert.Equal(t, tt.seg, seg)
			assert.Equal(t, tt.strategy, st)
		})
	}
}

func TestHotspotScore(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.9*0.6+0.5*0.4, HotspotScore(0.9, 0.5), 1e-12)
	assert.InDelta(t, 0.0, HotspotScore(0, 0), 1e-12)
}

func TestParseMetric(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.75, ParseMetric("0.75"))
	assert.Equal(t, 0.5, ParseMetric(`"0.5"`))
	assert.True(t, math.IsNaN(ParseMetric("null")))
	assert.True(t, math.IsNaN(ParseMetric("")))
	assert.True(t, math.IsNaN(ParseMetric(`"high"`)))
}

func TestNewGrid_DropsNaNAndAnnotates(t *testing.T) {
	t.Parallel()

	raw := []LocationPoint{
		{Latitude: 1, Longitude: 1, Geohash: "s00", Affinity: 0.9, Popularity: 0.8},
		{Latitude: 2, Longitude: 2, Affinity: math.NaN(), Popularity: 0.8},
		{Latitude: 3, Longitude: 3, Affinity: 0.2, Popularity: math.NaN()},
		{Latitude: 40.7128, Longitude: -74.006, Affinity: 0.3, Popularity: 0.7},
	}
	g := NewGrid("candidate", "New York", raw)

	require.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.Dropped)
	assert.Equal(t, "s00", g.Points[0].Geohash)
	assert.Equal(t, StrategyRallyTheBase, g.Points[0].Strategy)
	assert.InDelta(t, 0.86, g.Points[0].HotspotScore, 1e-9)

	// geohash backfilled when missing
	assert.Len(t, g.Points[1].Geohash, GeohashPrecision)
	assert.Equal(t, "dr5regw", g.Points[1].Geohash)
	assert.Equal(t, SegmentLAHP, g.Points[1].Segment)
}

func TestNewGrid_DropsUnparseableCoordinates(t *testing.T) {
	t.Parallel()

	g := NewGrid("location", "Columbus, Ohio", []LocationPoint{
		{Latitude: ParseMetric("null"), Longitude: -83.0, Affinity: 0.5, Popularity: 0.5},
		{Latitude: 39.96, Longitude: ParseMetric(`"west"`), Affinity: 0.5, Popularity: 0.5},
		{Latitude: 39.96, Longitude: -83.0, Affinity: 0.5, Popularity: 0.5},
	})

	require.Equal(t, 1, g.Len())
	assert.Equal(t, 2, g.Dropped)
	_, err := json.Marshal(g)
	assert.NoError(t, err)
}

func TestGrid_IndexFirstWins(t *testing.T) {
	t.Parallel()
	g := NewGrid("g", "x", []LocationPoint{
		{Latitude: 1, Longitude: 2, Affinity: 0.1, Popularity: 0.1},
		{Latitude: 1, Longitude: 2, Affinity: 0.9, Popularity: 0.9},
		{Latitude: 0, Longitude: 5, Affinity: 0.5, Popularity: 0.5},
	})
	idx := g.Index()
	require.Len(t, idx, 2)
	assert.Equal(t, 0.1, idx[Key{Lat: 1, Lon: 2}].Affinity)
	assert.Equal(t, []Key{{Lat: 0, Lon: 5}, {Lat: 1, Lon: 2}}, g.SortedKeys())
}

func TestGrid_NilAndEmpty(t *testing.T) {
	t.Parallel()
	var g *Grid
	assert.True(t, g.IsEmpty())
	assert.Empty(t, g.Index())
	e := EmptyGrid("opponent", "Ohio", "timeout")
	assert.True(t, e.IsEmpty())
	assert.Equal(t, "timeout", e.Error)
	assert.NotNil(t, e.Points)
}

func TestGrid_StrategyCounts(t *testing.T) {
	t.Parallel()
	g := NewGrid("g", "x", []LocationPoint{
		{Latitude: 1, Longitude: 1, Affinity: 0.9, Popularity: 0.9},
		{Latitude: 2, Longitude: 2, Affinity: 0.9, Popularity: 0.9},
		{Latitude: 3, Longitude: 3, Affinity: 0.1, Popularity: 0.1},
	})
	c := g.StrategyCounts()
	assert.Equal(t, 2, c[StrategyRallyTheBase])
	assert.Equal(t, 1, c[StrategyDeepConversion])
}

func TestKey_Less(t *testing.T) {
	t.Parallel()
	keys := []Key{{Lat: 2, Lon: 1}, {Lat: 1, Lon: 3}, {Lat: 1, Lon: -1}}
	SortKeys(keys)
	assert.Equal(t, []Key{{Lat: 1, Lon: -1}, {Lat: 1, Lon: 3}, {Lat: 2, Lon: 1}}, keys)
}

//Personal.AI order the ending
