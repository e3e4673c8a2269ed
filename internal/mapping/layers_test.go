package mapping

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quartermaps/internal/colorscale"
	"quartermaps/internal/geometry"
	"quartermaps/internal/models"
	"quartermaps/internal/tabular"
)

func quarterFeature(cadnum string) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{
		{{30.0, 59.0}, {30.2, 59.0}, {30.2, 59.1}, {30.0, 59.1}, {30.0, 59.0}},
	})
	f.Properties = geojson.Properties{geometry.CadnumProperty: cadnum}
	return f
}

func testMap() *Map {
	logger := logrus.New()
	return New("test", 59.95, 30.3, 13, DefaultTiles, logger)
}

func TestAddMetricLayerStyles(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))
	fc.Append(quarterFeature("q2"))

	metrics := []models.QuarterMetric{
		{Quarter: "q1", Count: 2, Median: 200, ArithMean: 200, GeomMean: 173.2},
		{Quarter: "q3", Count: 1, Median: 50, ArithMean: 50, GeomMean: 50},
	}

	m := testMap()
	m.AddMetricLayer(fc, metrics, MetricLayer{
		Field:   "median",
		Name:    "Медиана цены за кв.м",
		Show:    true,
		Palette: colorscale.YlOrRd,
	})

	overlays := m.Overlays()
	require.Len(t, overlays, 1)
	themed := overlays[0].GeoJSON
	require.Len(t, themed.Features, 2)

	matched := themed.Features[0].Properties
	assert.Equal(t, 200.0, matched["median"])
	assert.Equal(t, 2, matched["count"])
	assert.Equal(t, 0.65, matched["_fillOpacity"])
	assert.NotEqual(t, noDataFill, matched["_fillColor"])

	unmatched := themed.Features[1].Properties
	assert.Nil(t, unmatched["median"])
	assert.Nil(t, unmatched["count"])
	assert.Equal(t, noDataFill, unmatched["_fillColor"])
	assert.Equal(t, noDataOpacity, unmatched["_fillOpacity"])

	// source features are untouched
	_, touched := fc.Features[0].Properties["median"]
	assert.False(t, touched)
}

func TestAddMetricLayerSkippedWithoutValues(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))

	metrics := []models.QuarterMetric{
		{Quarter: "q1", Count: 1, GeomMean: math.NaN()},
	}

	m := testMap()
	m.AddMetricLayer(fc, metrics, MetricLayer{
		Field:   "geom_mean",
		Name:    "Среднее геом.",
		Palette: colorscale.YlOrRd,
	})

	assert.Empty(t, m.Overlays())
}

func TestAddMetricLayerNaNValueRendersAsNoData(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))
	fc.Append(quarterFeature("q2"))

	metrics := []models.QuarterMetric{
		{Quarter: "q1", Count: 3, GeomMean: math.NaN()},
		{Quarter: "q2", Count: 2, GeomMean: 120},
	}

	m := testMap()
	m.AddMetricLayer(fc, metrics, MetricLayer{
		Field:   "geom_mean",
		Name:    "Среднее геом.",
		Palette: colorscale.YlOrRd,
	})

	require.Len(t, m.Overlays(), 1)
	props := m.Overlays()[0].GeoJSON.Features[0].Properties
	assert.Nil(t, props["geom_mean"])
	assert.Equal(t, noDataFill, props["_fillColor"])
}

func TestAddBidsLayerScaled(t *testing.T) {
	bids := []models.Bid{
		{Address: "Невский пр., 1", Latitude: 59.93, Longitude: 30.35, PricePerSqm: 100000, TotalPrice: "10 000 000"},
		{Address: "Литейный пр., 2", Latitude: 59.94, Longitude: 30.34, PricePerSqm: 250000},
	}

	m := testMap()
	m.AddBidsLayer(bids, BidsLayer{
		Caption:   "Предложения: цена за кв.м",
		Palette:   colorscale.Blues,
		ShowTotal: true,
	})

	overlays := m.Overlays()
	require.Len(t, overlays, 1)
	require.Len(t, overlays[0].Points, 2)

	assert.True(t, overlays[0].Show)
	assert.NotEqual(t, overlays[0].Points[0].Color, overlays[0].Points[1].Color)
	assert.Contains(t, overlays[0].Points[0].Popup, "Невский пр., 1")
	assert.Contains(t, overlays[0].Points[0].Popup, "Цена объекта: 10 000 000")
	assert.NotContains(t, overlays[0].Points[1].Popup, "Цена объекта")
}

func TestAddBidsLayerFixedColor(t *testing.T) {
	bids := []models.Bid{{Latitude: 59.9, Longitude: 30.3, PricePerSqm: 1}}

	m := testMap()
	m.AddBidsLayer(bids, BidsLayer{FixedColor: "black", Radius: 6})

	require.Len(t, m.Overlays(), 1)
	pt := m.Overlays()[0].Points[0]
	assert.Equal(t, "black", pt.Color)
	assert.Equal(t, 6.0, pt.Radius)
}

func TestAddBidsLayerEmpty(t *testing.T) {
	m := testMap()
	m.AddBidsLayer(nil, BidsLayer{})
	assert.Empty(t, m.Overlays())
}

func TestAddBordersLayer(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))

	m := testMap()
	m.AddBordersLayer(fc, "")

	require.Len(t, m.Overlays(), 1)
	overlay := m.Overlays()[0]
	assert.Equal(t, "Границы кварталов", overlay.Name)
	props := overlay.GeoJSON.Features[0].Properties
	assert.Equal(t, 0.0, props["_fillOpacity"])
	assert.Equal(t, "black", props["_color"])
}

func TestAddLabelsLayer(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("78:07:0321001"))
	fc.Append(quarterFeature("78:07:0321002"))

	metrics := []models.QuarterMetric{
		{Quarter: "78:07:0321001", Count: 4, Median: 151999.6},
	}

	m := testMap()
	m.AddLabelsLayer(fc, metrics, LabelsLayer{})

	require.Len(t, m.Overlays(), 1)
	labels := m.Overlays()[0].Labels
	require.Len(t, labels, 2)

	assert.Contains(t, labels[0].HTML, "0321001")
	assert.NotContains(t, labels[0].HTML, "78:07:")
	assert.Contains(t, labels[0].HTML, "мед: 152000")
	assert.Contains(t, labels[0].HTML, "n=4")

	assert.Contains(t, labels[1].HTML, "мед: —")
	assert.Contains(t, labels[1].HTML, "n=—")

	// centroid placement
	assert.InDelta(t, 59.04, labels[0].Lat, 0.1)
	assert.InDelta(t, 30.08, labels[0].Lon, 0.1)
}

func TestAddLabelsLayerFullID(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("78:07:0321001"))

	m := testMap()
	m.AddLabelsLayer(fc, nil, LabelsLayer{FullID: true})

	assert.Contains(t, m.Overlays()[0].Labels[0].HTML, "78:07:0321001")
}

func TestThemedCollectionRoundTrip(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))
	fc.Append(quarterFeature("q2"))

	metrics := []models.QuarterMetric{{Quarter: "q1", Count: 2, Median: 200}}

	m := testMap()
	m.AddMetricLayer(fc, metrics, MetricLayer{
		Field: "median", Name: "Медиана", Palette: colorscale.YlOrRd,
	})

	data, err := json.Marshal(m.Overlays()[0].GeoJSON)
	require.NoError(t, err)

	reloaded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, reloaded.Features, 2)

	assert.Equal(t, 200.0, reloaded.Features[0].Properties["median"])
	assert.Nil(t, reloaded.Features[1].Properties["median"])
}

func TestRender(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))

	m := testMap()
	m.AddMetricLayer(fc, []models.QuarterMetric{{Quarter: "q1", Count: 1, Median: 100}}, MetricLayer{
		Field: "median", Name: "Медиана цены за кв.м", Show: true, Palette: colorscale.YlOrRd,
	})
	m.AddBordersLayer(fc, "")

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "leaflet")
	assert.Contains(t, html, "Медиана цены за кв.м")
	assert.Contains(t, html, "Границы кварталов")
	assert.Contains(t, html, "L.control.layers")
}

func TestAddJoinedLayer(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	district := geojson.NewFeature(orb.Polygon{
		{{30.0, 59.0}, {30.2, 59.0}, {30.2, 59.1}, {30.0, 59.1}, {30.0, 59.0}},
	})
	district.Properties = geojson.Properties{"district_id": "d1"}
	fc.Append(district)

	other := geojson.NewFeature(orb.Polygon{
		{{30.3, 59.0}, {30.5, 59.0}, {30.5, 59.1}, {30.3, 59.1}, {30.3, 59.0}},
	})
	other.Properties = geojson.Properties{"district_id": "d2"}
	fc.Append(other)

	tbl := &tabular.Table{
		Columns: []string{"district_id", "population", "name"},
		Rows: [][]string{
			{"d1", "12000", "Центральный"},
		},
	}

	m := testMap()
	require.NoError(t, m.AddJoinedLayer(fc, tbl, JoinedLayer{
		Name:        "Население",
		IDColumn:    "district_id",
		ValueColumn: "population",
		TooltipCols: []string{"name", "population"},
	}))

	overlays := m.Overlays()
	require.Len(t, overlays, 1)
	themed := overlays[0].GeoJSON
	require.Len(t, themed.Features, 2)

	joined := themed.Features[0].Properties
	assert.Equal(t, 12000.0, joined["population"])
	assert.Equal(t, "Центральный", joined["name"])
	assert.Equal(t, 0.7, joined["_fillOpacity"])
	assert.NotEqual(t, noDataFill, joined["_fillColor"])

	missing := themed.Features[1].Properties
	assert.Equal(t, noDataFill, missing["_fillColor"])
	assert.Equal(t, noDataOpacity, missing["_fillOpacity"])
	assert.Nil(t, missing["name"])
}

func TestAddJoinedLayerMissingColumn(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))

	tbl := &tabular.Table{Columns: []string{"id"}, Rows: [][]string{{"q1"}}}

	m := testMap()
	err := m.AddJoinedLayer(fc, tbl, JoinedLayer{IDColumn: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestAddJoinedLayerOutlineOnly(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(quarterFeature("q1"))
	fc.Features[0].Properties["id"] = "q1"

	tbl := &tabular.Table{Columns: []string{"id"}, Rows: [][]string{{"q1"}}}

	m := testMap()
	require.NoError(t, m.AddJoinedLayer(fc, tbl, JoinedLayer{IDColumn: "id"}))

	props := m.Overlays()[0].GeoJSON.Features[0].Properties
	assert.Nil(t, props["_fillColor"])
	assert.Equal(t, 0.0, props["_fillOpacity"])
}
