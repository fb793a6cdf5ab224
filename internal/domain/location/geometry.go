package location

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// MinPolygonPoints is the smallest coordinate set that yields a polygon.
const MinPolygonPoints = 3

// Footprint is the geometric summary of an identified set.
type Footprint struct {
	Tag      string      `json:"tag"`
	WKT      string      `json:"wkt"`
	Centroid [2]float64  `json:"centroid"`
	Bounds   [4]float64  `json:"bounds"`
	Area     float64     `json:"area"`
	Polygon  orb.Polygon `json:"-"`
}

// Points converts [lat, lon] pairs into orb points (lon, lat).
func Points(coords [][2]float64) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, orb.Point{c[1], c[0]})
	}
	return mp
}

// BoundingPolygon returns the axis-aligned bounding box of the coordinates as
// a closed ring starting at (minLon, minLat). Fewer than three points is
// ErrCodeInsufficientPoints.
func BoundingPolygon(coords [][2]float64) (orb.Polygon, error) {
	if len(coords) < MinPolygonPoints {
		return nil, errors.Newf(errors.ErrCodeInsufficientPoints,
			"need at least %d points to build a polygon, got %d", MinPolygonPoints, len(coords))
	}
	return Points(coords).Bound().ToPolygon(), nil
}

// NewFootprint computes the polygon, centroid and planar area of a set.
func NewFootprint(id *Identified) (*Footprint, error) {
	poly, err := BoundingPolygon(id.Coordinates)
	if err != nil {
		return nil, err
	}
	mp := Points(id.Coordinates)
	c, _ := planar.CentroidArea(mp)
	b := mp.Bound()
	return &Footprint{
		Tag:      id.Tag,
		WKT:      wkt.MarshalString(poly),
		Centroid: [2]float64{c.Lat(), c.Lon()},
		Bounds:   [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
		Area:     planar.Area(poly),
		Polygon:  poly,
	}, nil
}

// FeatureCollection renders the set as GeoJSON: one point feature per
// location, plus the bounding polygon when there are enough points.
func FeatureCollection(id *Identified) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range Points(id.Coordinates) {
		f := geojson.NewFeature(p)
		f.Properties["tag"] = id.Tag
		fc.Append(f)
	}
	if poly, err := BoundingPolygon(id.Coordinates); err == nil {
		f := geojson.NewFeature(poly)
		f.Properties["tag"] = id.Tag
		f.Properties["kind"] = "bounding_box"
		f.Properties["total_locations"] = id.TotalLocations
		fc.Append(f)
	}
	return fc
}

//Personal.AI order the ending
