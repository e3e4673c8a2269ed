package geometry

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polygonFeature(id string, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{
		{{30.0, 59.0}, {30.2, 59.0}, {30.2, 59.1}, {30.0, 59.1}, {30.0, 59.0}},
	})
	f.Properties = props
	if id != "" {
		f.Properties["externalKey"] = id
	}
	return f
}

func TestQuarterIDPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		props    geojson.Properties
		expected string
	}{
		{
			name:     "External key wins",
			props:    geojson.Properties{"externalKey": "q1", "label": "q2"},
			expected: "q1",
		},
		{
			name:     "Label fallback",
			props:    geojson.Properties{"label": "q2"},
			expected: "q2",
		},
		{
			name: "Options cad_num fallback",
			props: geojson.Properties{
				"options": map[string]interface{}{"cad_num": "q3"},
			},
			expected: "q3",
		},
		{
			name:     "No identifier",
			props:    geojson.Properties{"name": "unnamed"},
			expected: "",
		},
		{
			name:     "Numeric identifier is stringified",
			props:    geojson.Properties{"label": float64(78)},
			expected: "78",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := geojson.NewFeature(orb.Point{30, 59})
			f.Properties = tt.props
			assert.Equal(t, tt.expected, QuarterID(f))
		})
	}
}

func TestFilterByQuarters(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature("q1", geojson.Properties{}))
	fc.Append(polygonFeature("q2", geojson.Properties{}))
	fc.Append(polygonFeature("q3", geojson.Properties{}))

	allowed := map[string]struct{}{"q1": {}}
	filtered := FilterByQuarters(fc, allowed)

	require.Len(t, filtered.Features, 1)
	assert.Equal(t, "q1", filtered.Features[0].Properties[CadnumProperty])

	// source collection is untouched
	_, annotated := fc.Features[0].Properties[CadnumProperty]
	assert.False(t, annotated)
}

func TestFilterByQuartersDropsFeatureWithoutGeometry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	bare := &geojson.Feature{Properties: geojson.Properties{"externalKey": "q1"}}
	fc.Features = append(fc.Features, bare)

	filtered := FilterByQuarters(fc, map[string]struct{}{"q1": {}})
	assert.Empty(t, filtered.Features)
}

func TestFilterByQuartersIdempotent(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature("q1", geojson.Properties{}))
	fc.Append(polygonFeature("q2", geojson.Properties{}))

	allowed := map[string]struct{}{"q1": {}, "q2": {}}
	once := FilterByQuarters(fc, allowed)
	twice := FilterByQuarters(once, allowed)

	require.Len(t, twice.Features, len(once.Features))
	for i := range once.Features {
		assert.Equal(t, once.Features[i].Properties, twice.Features[i].Properties)
	}
}

func TestBoundsCenterSinglePoint(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{30.3, 59.95}))

	lat, lon, err := BoundsCenter(fc)
	require.NoError(t, err)
	assert.Equal(t, 59.95, lat)
	assert.Equal(t, 30.3, lon)
}

func TestBoundsCenterSpan(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{30.0, 59.0}))
	fc.Append(geojson.NewFeature(orb.Point{31.0, 60.0}))

	lat, lon, err := BoundsCenter(fc)
	require.NoError(t, err)
	assert.InDelta(t, 59.5, lat, 1e-9)
	assert.InDelta(t, 30.5, lon, 1e-9)
}

func TestBoundsCenterEmpty(t *testing.T) {
	_, _, err := BoundsCenter(geojson.NewFeatureCollection())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no coordinates")
}

func TestCentroidSquare(t *testing.T) {
	f := geojson.NewFeature(orb.Polygon{
		{{0, 0}, {2, 0}, {2, 2}, {0, 2}},
	})

	lat, lon := Centroid(f)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 1.0, lon)
}

func TestCentroidMultiPolygon(t *testing.T) {
	f := geojson.NewFeature(orb.MultiPolygon{
		{{{0, 0}, {2, 0}, {2, 2}, {0, 2}}},
		{{{4, 4}, {6, 4}, {6, 6}, {4, 6}}},
	})

	lat, lon := Centroid(f)
	assert.Equal(t, 3.0, lat)
	assert.Equal(t, 3.0, lon)
}

func TestCentroidNoCoordinates(t *testing.T) {
	lat, lon := Centroid(&geojson.Feature{})
	assert.Equal(t, 0.0, lat)
	assert.Equal(t, 0.0, lon)
}

func TestCollectionRoundTrip(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature("78:07:0321001", geojson.Properties{"label": "78:07:0321001"}))

	path := filepath.Join(t.TempDir(), "nested", "filtered.geojson")
	require.NoError(t, SaveCollection(path, fc))

	loaded, err := LoadCollection(path)
	require.NoError(t, err)
	require.Len(t, loaded.Features, 1)
	assert.Equal(t, "78:07:0321001", QuarterID(loaded.Features[0]))
}

func TestLoadCollectionMissingFile(t *testing.T) {
	_, err := LoadCollection(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
