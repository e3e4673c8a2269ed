package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// visitPoints calls visit for every leaf coordinate of a geometry exactly
// once. The typed switch replaces the "first element is numeric" sniffing a
// raw coordinate tree would need.
func visitPoints(g orb.Geometry, visit func(orb.Point)) {
	switch geom := g.(type) {
	case orb.Point:
		visit(geom)
	case orb.MultiPoint:
		for _, p := range geom {
			visit(p)
		}
	case orb.LineString:
		for _, p := range geom {
			visit(p)
		}
	case orb.MultiLineString:
		for _, ls := range geom {
			for _, p := range ls {
				visit(p)
			}
		}
	case orb.Ring:
		for _, p := range geom {
			visit(p)
		}
	case orb.Polygon:
		for _, ring := range geom {
			for _, p := range ring {
				visit(p)
			}
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			for _, ring := range poly {
				for _, p := range ring {
					visit(p)
				}
			}
		}
	case orb.Collection:
		for _, sub := range geom {
			visitPoints(sub, visit)
		}
	}
}

// BoundsCenter returns the midpoint of the bounding box spanned by every
// coordinate in the collection, as (lat, lon). A collection with no
// coordinates is an explicit error rather than a sentinel-valued center.
func BoundsCenter(fc *geojson.FeatureCollection) (lat, lon float64, err error) {
	var minLat, maxLat, minLon, maxLon float64
	seen := false

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		visitPoints(f.Geometry, func(p orb.Point) {
			if !seen {
				minLon, maxLon = p[0], p[0]
				minLat, maxLat = p[1], p[1]
				seen = true
				return
			}
			minLon = min(minLon, p[0])
			maxLon = max(maxLon, p[0])
			minLat = min(minLat, p[1])
			maxLat = max(maxLat, p[1])
		})
	}

	if !seen {
		return 0, 0, fmt.Errorf("no coordinates in feature collection")
	}
	return (minLat + maxLat) / 2, (minLon + maxLon) / 2, nil
}

// Centroid returns the unweighted mean of all leaf vertices of a feature as
// (lat, lon). This deliberately includes duplicated ring-closing points and
// is not an area-weighted polygon centroid; labels placed with it match the
// historically produced maps. A feature with no coordinates yields (0, 0).
func Centroid(f *geojson.Feature) (lat, lon float64) {
	if f == nil || f.Geometry == nil {
		return 0, 0
	}

	var latSum, lonSum float64
	n := 0
	visitPoints(f.Geometry, func(p orb.Point) {
		lonSum += p[0]
		latSum += p[1]
		n++
	})

	if n == 0 {
		return 0, 0
	}
	return latSum / float64(n), lonSum / float64(n)
}
