package mapping

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"quartermaps/internal/colorscale"
	"quartermaps/internal/geometry"
	"quartermaps/internal/models"
	"quartermaps/internal/stats"
	"quartermaps/internal/tabular"
)

// Style property keys read by the map template. Keeping the style on the
// feature lets one script block render every choropleth layer.
const (
	fillColorProp   = "_fillColor"
	fillOpacityProp = "_fillOpacity"
	strokeColorProp = "_color"
	strokeWidthProp = "_weight"
)

// noDataFill marks quarters present on the map but without a matching
// statistic: visible outline, near-transparent neutral fill. This encodes
// "no data", not an error.
const (
	noDataFill    = "#dddddd"
	noDataOpacity = 0.1
)

// MetricLayer configures one choropleth layer over quarter geometry.
type MetricLayer struct {
	Field      string
	Name       string
	Show       bool
	Palette    colorscale.Palette
	CountAlias string
}

// BidsLayer configures the listing point layer.
type BidsLayer struct {
	Name       string
	Caption    string
	Palette    colorscale.Palette
	FixedColor string
	Radius     float64
	ShowTotal  bool
}

// LabelsLayer configures the per-quarter text labels.
type LabelsLayer struct {
	Name   string
	FullID bool
}

// AddMetricLayer joins metric values onto the filtered quarter geometry and
// adds a choropleth overlay plus its legend. The color domain spans every
// non-NaN value in metrics, including quarters without geometry. When no
// usable value exists the layer is skipped entirely.
func (m *Map) AddMetricLayer(fc *geojson.FeatureCollection, metrics []models.QuarterMetric, layer MetricLayer) {
	values := make([]float64, 0, len(metrics))
	for _, metric := range metrics {
		values = append(values, stats.MetricValue(metric, layer.Field))
	}
	scale, ok := colorscale.New(layer.Palette, values)
	if !ok {
		m.logger.Warnf("No %s values available; skipping layer %q", layer.Field, layer.Name)
		return
	}

	lookup := make(map[string]models.QuarterMetric, len(metrics))
	for _, metric := range metrics {
		lookup[metric.Quarter] = metric
	}

	themed := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		props := make(geojson.Properties, len(f.Properties)+6)
		for k, v := range f.Properties {
			props[k] = v
		}

		cadnum, _ := f.Properties[geometry.CadnumProperty].(string)
		metric, matched := lookup[cadnum]
		value := stats.MetricValue(metric, layer.Field)
		if matched && !math.IsNaN(value) {
			props[layer.Field] = value
			props["count"] = metric.Count
			props[fillColorProp] = scale.Hex(value)
			props[fillOpacityProp] = 0.65
		} else {
			props[layer.Field] = nil
			props["count"] = nil
			props[fillColorProp] = noDataFill
			props[fillOpacityProp] = noDataOpacity
		}
		props[strokeColorProp] = "#000000"
		props[strokeWidthProp] = 1.5

		nf := geojson.NewFeature(f.Geometry)
		nf.Properties = props
		themed.Append(nf)
	}

	countAlias := layer.CountAlias
	if countAlias == "" {
		countAlias = "Количество"
	}
	m.AddOverlay(&Overlay{
		Name:    layer.Name,
		Show:    layer.Show,
		Kind:    "geojson",
		GeoJSON: themed,
		Tooltip: &TooltipSpec{
			Fields:  []string{geometry.CadnumProperty, layer.Field, "count"},
			Aliases: []string{"Кадастровый квартал", layer.Name, countAlias},
		},
	})
	m.AddLegend(scale.Legend(layer.Name))
}

// AddBidsLayer adds the listing markers, colored by their own price scale
// when a palette is set, fixed-colored otherwise.
func (m *Map) AddBidsLayer(bids []models.Bid, layer BidsLayer) {
	if len(bids) == 0 {
		m.logger.Warn("No bids to place; skipping bids layer")
		return
	}

	name := layer.Name
	if name == "" {
		name = "Предложения (точки)"
	}
	radius := layer.Radius
	if radius == 0 {
		radius = 5
	}

	var scale *colorscale.Scale
	if layer.Palette != nil {
		values := make([]float64, len(bids))
		for i, b := range bids {
			values[i] = b.PricePerSqm
		}
		var ok bool
		scale, ok = colorscale.New(layer.Palette, values)
		if ok {
			caption := layer.Caption
			if caption == "" {
				caption = name
			}
			m.AddLegend(scale.Legend(caption))
		}
	}

	points := make([]PointMarker, 0, len(bids))
	for _, b := range bids {
		color := layer.FixedColor
		if color == "" {
			color = "black"
		}
		if scale != nil {
			color = scale.Hex(b.PricePerSqm)
		}

		popup := fmt.Sprintf("%s<br>Цена за кв.м: %.0f руб.", b.Address, b.PricePerSqm)
		if layer.ShowTotal && b.TotalPrice != "" {
			popup += fmt.Sprintf("<br>Цена объекта: %s", b.TotalPrice)
		}

		points = append(points, PointMarker{
			Lat:         b.Latitude,
			Lon:         b.Longitude,
			Radius:      radius,
			Color:       color,
			FillColor:   color,
			FillOpacity: 0.9,
			Popup:       popup,
		})
	}

	m.AddOverlay(&Overlay{Name: name, Show: true, Kind: "points", Points: points})
}

// AddBordersLayer adds a fill-free outline of the quarter boundaries.
func (m *Map) AddBordersLayer(fc *geojson.FeatureCollection, name string) {
	if name == "" {
		name = "Границы кварталов"
	}

	outlined := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		props := make(geojson.Properties, len(f.Properties)+4)
		for k, v := range f.Properties {
			props[k] = v
		}
		props[fillColorProp] = nil
		props[fillOpacityProp] = 0.0
		props[strokeColorProp] = "black"
		props[strokeWidthProp] = 2.0

		nf := geojson.NewFeature(f.Geometry)
		nf.Properties = props
		outlined.Append(nf)
	}

	m.AddOverlay(&Overlay{Name: name, Show: true, Kind: "geojson", GeoJSON: outlined})
}

// AddLabelsLayer places a text marker at each quarter centroid showing the
// quarter id (or its suffix after the last colon), the rounded median and
// the observation count. Gaps render as an em dash.
func (m *Map) AddLabelsLayer(fc *geojson.FeatureCollection, metrics []models.QuarterMetric, layer LabelsLayer) {
	name := layer.Name
	if name == "" {
		name = "Подписи"
	}

	lookup := make(map[string]models.QuarterMetric, len(metrics))
	for _, metric := range metrics {
		lookup[metric.Quarter] = metric
	}

	labels := make([]Label, 0, len(fc.Features))
	for _, f := range fc.Features {
		cadnum, _ := f.Properties[geometry.CadnumProperty].(string)
		display := cadnum
		if !layer.FullID {
			if idx := strings.LastIndex(cadnum, ":"); idx >= 0 {
				display = cadnum[idx+1:]
			}
		}

		medianStr, countStr := "—", "—"
		if metric, ok := lookup[cadnum]; ok {
			if !math.IsNaN(metric.Median) {
				medianStr = fmt.Sprintf("%d", int(math.Round(metric.Median)))
			}
			countStr = fmt.Sprintf("%d", metric.Count)
		}

		lat, lon := geometry.Centroid(f)
		html := fmt.Sprintf(
			"<div style='font-size:10px; font-weight:bold; color:black; text-shadow:1px 1px 2px white;'>%s<br>мед: %s<br>n=%s</div>",
			display, medianStr, countStr)
		labels = append(labels, Label{Lat: lat, Lon: lon, HTML: html})
	}

	m.AddOverlay(&Overlay{Name: name, Show: true, Kind: "labels", Labels: labels})
}

// JoinedLayer configures an ad-hoc choropleth built by joining an arbitrary
// table onto geometry through a shared id column.
type JoinedLayer struct {
	Name        string
	IDColumn    string
	ValueColumn string
	TooltipCols []string
	Palette     colorscale.Palette
}

// AddJoinedLayer matches each feature's id property against the table's id
// column and copies the requested columns into the feature properties. With
// a value column set the fill follows the palette over the joined values;
// without one the layer is a plain outline.
func (m *Map) AddJoinedLayer(fc *geojson.FeatureCollection, table *tabular.Table, layer JoinedLayer) error {
	idIdx := table.ColumnIndex(layer.IDColumn)
	if idIdx < 0 {
		return fmt.Errorf("column %q not found in table", layer.IDColumn)
	}

	rows := make(map[string][]string, len(table.Rows))
	for _, row := range table.Rows {
		rows[row[idIdx]] = row
	}

	var scale *colorscale.Scale
	if layer.ValueColumn != "" {
		valIdx := table.ColumnIndex(layer.ValueColumn)
		if valIdx < 0 {
			return fmt.Errorf("column %q not found in table", layer.ValueColumn)
		}
		values := make([]float64, 0, len(table.Rows))
		for _, row := range table.Rows {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[valIdx]), 64); err == nil {
				values = append(values, v)
			}
		}
		palette := layer.Palette
		if palette == nil {
			palette = colorscale.YlGnBu
		}
		var ok bool
		scale, ok = colorscale.New(palette, values)
		if !ok {
			m.logger.Warnf("No %s values available; rendering %q without fill", layer.ValueColumn, layer.Name)
		}
	}

	themed := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		props := make(geojson.Properties, len(f.Properties)+6)
		for k, v := range f.Properties {
			props[k] = v
		}

		id := stringProp(f, layer.IDColumn)
		row, matched := rows[id]

		for _, col := range layer.TooltipCols {
			if idx := table.ColumnIndex(col); idx >= 0 && matched {
				props[col] = row[idx]
			} else if _, exists := props[col]; !exists {
				props[col] = nil
			}
		}

		props[fillColorProp] = nil
		props[fillOpacityProp] = 0.0
		if scale != nil {
			props[fillColorProp] = noDataFill
			props[fillOpacityProp] = noDataOpacity
			if matched {
				valIdx := table.ColumnIndex(layer.ValueColumn)
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[valIdx]), 64); err == nil {
					props[layer.ValueColumn] = v
					props[fillColorProp] = scale.Hex(v)
					props[fillOpacityProp] = 0.7
				}
			}
		}
		props[strokeColorProp] = "#000000"
		props[strokeWidthProp] = 1.0

		nf := geojson.NewFeature(f.Geometry)
		nf.Properties = props
		themed.Append(nf)
	}

	name := layer.Name
	if name == "" {
		name = "Данные"
	}
	overlay := &Overlay{Name: name, Show: true, Kind: "geojson", GeoJSON: themed}
	if len(layer.TooltipCols) > 0 {
		overlay.Tooltip = &TooltipSpec{Fields: layer.TooltipCols, Aliases: layer.TooltipCols}
	}
	m.AddOverlay(overlay)
	if scale != nil {
		caption := layer.Name
		if caption == "" {
			caption = layer.ValueColumn
		}
		m.AddLegend(scale.Legend(caption))
	}
	return nil
}

// stringProp coerces a feature property to its string form.
func stringProp(f *geojson.Feature, key string) string {
	switch v := f.Properties[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
