package location

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

var fixedNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func TestBoundingPolygon(t *testing.T) {
	t.Parallel()
	coords := [][2]float64{{40, -75}, {41, -74}, {40.5, -73}}
	poly, err := BoundingPolygon(coords)
	require.NoError(t, err)
	require.Len(t, poly, 1)
	assert.Equal(t, orb.Ring{{-75, 40}, {-73, 40}, {-73, 41}, {-75, 41}, {-75, 40}}, poly[0])
}

func TestBoundingPolygon_TooFewPoints(t *testing.T) {
	t.Parallel()
	_, err := BoundingPolygon([][2]float64{{1, 1}, {2, 2}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInsufficientPoints))
}

func TestNewFootprint(t *testing.T) {
	t.Parallel()
	id := &Identified{Tag: "core", Coordinates: [][2]float64{{0, 0}, {2, 0}, {2, 4}, {0, 4}}, TotalLocations: 4}
	fp, err := NewFootprint(id)
	require.NoError(t, err)
	assert.Equal(t, "core", fp.Tag)
	assert.Contains(t, fp.WKT, "POLYGON((")
	assert.InDelta(t, 8.0, fp.Area, 1e-9)
	assert.Equal(t, [4]float64{0, 0, 4, 2}, fp.Bounds)
	assert.InDelta(t, 1.0, fp.Centroid[0], 1e-9)
	assert.InDelta(t, 2.0, fp.Centroid[1], 1e-9)
}

func TestFeatureCollection(t *testing.T) {
	t.Parallel()
	id := &Identified{Tag: "t", Coordinates: [][2]float64{{0, 0}, {1, 1}, {2, 2}}, TotalLocations: 3}
	fc := FeatureCollection(id)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "bounding_box", fc.Features[3].Properties["kind"])

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"FeatureCollection"`)

	small := FeatureCollection(&Identified{Tag: "s", Coordinates: [][2]float64{{0, 0}}})
	assert.Len(t, small.Features, 1)
}

//Personal.AI order the ending
