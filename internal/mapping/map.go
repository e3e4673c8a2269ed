// Package mapping assembles interactive Leaflet maps out of themed quarter
// geometry, listing markers and labels, and renders them to self-contained
// HTML documents.
package mapping

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"quartermaps/internal/colorscale"
)

//go:embed templates/map.html.tmpl
var templates embed.FS

// Tile layer presets by name.
var tileLayers = map[string]struct {
	URL         string
	Attribution string
}{
	"OpenStreetMap": {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
	"cartodbpositron": {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
}

// DefaultTiles is the base layer used when a driver does not choose one.
const DefaultTiles = "OpenStreetMap"

// Map is one interactive map document under assembly. Layers are added in
// display order and stay independently toggleable in the rendered output.
type Map struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Tiles     string

	logger   *logrus.Logger
	overlays []*Overlay
	legends  []colorscale.Legend
}

// TooltipSpec binds feature property fields to display aliases.
type TooltipSpec struct {
	Fields  []string `json:"fields"`
	Aliases []string `json:"aliases"`
}

// PointMarker is a single circle marker.
type PointMarker struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Popup       string  `json:"popup"`
}

// Label is a text marker placed at a feature centroid.
type Label struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	HTML string  `json:"html"`
}

// Overlay is one toggleable map layer.
type Overlay struct {
	Name    string                     `json:"name"`
	Show    bool                       `json:"show"`
	Kind    string                     `json:"kind"`
	GeoJSON *geojson.FeatureCollection `json:"geojson,omitempty"`
	Tooltip *TooltipSpec               `json:"tooltip,omitempty"`
	Points  []PointMarker              `json:"points,omitempty"`
	Labels  []Label                    `json:"labels,omitempty"`
}

func New(title string, centerLat, centerLon float64, zoom int, tiles string, logger *logrus.Logger) *Map {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if _, ok := tileLayers[tiles]; !ok {
		tiles = DefaultTiles
	}
	return &Map{
		Title:     title,
		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      zoom,
		Tiles:     tiles,
		logger:    logger,
	}
}

func (m *Map) AddOverlay(o *Overlay) {
	m.overlays = append(m.overlays, o)
}

func (m *Map) AddLegend(l colorscale.Legend) {
	m.legends = append(m.legends, l)
}

// Overlays exposes the assembled layer list, mostly for tests.
func (m *Map) Overlays() []*Overlay {
	return m.overlays
}

// marshalTemplateJS encodes a value as JSON tagged safe for embedding in a
// script block.
func marshalTemplateJS(value interface{}) (template.JS, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return template.JS(payload), nil
}

// Render writes the complete HTML document.
func (m *Map) Render(w io.Writer) error {
	tmpl, err := template.ParseFS(templates, "templates/map.html.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse map template: %w", err)
	}

	overlays := m.overlays
	if overlays == nil {
		overlays = []*Overlay{}
	}
	overlaysJSON, err := marshalTemplateJS(overlays)
	if err != nil {
		return fmt.Errorf("failed to encode overlays: %w", err)
	}

	legends := m.legends
	if legends == nil {
		legends = []colorscale.Legend{}
	}
	legendsJSON, err := marshalTemplateJS(legends)
	if err != nil {
		return fmt.Errorf("failed to encode legends: %w", err)
	}

	tiles := tileLayers[m.Tiles]
	data := struct {
		Title        string
		CenterLat    float64
		CenterLon    float64
		Zoom         int
		TileURL      string
		Attribution  template.HTML
		OverlaysJSON template.JS
		LegendsJSON  template.JS
	}{
		Title:        m.Title,
		CenterLat:    m.CenterLat,
		CenterLon:    m.CenterLon,
		Zoom:         m.Zoom,
		TileURL:      tiles.URL,
		Attribution:  template.HTML(tiles.Attribution),
		OverlaysJSON: overlaysJSON,
		LegendsJSON:  legendsJSON,
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute map template: %w", err)
	}
	return nil
}

// Save renders the map to path, creating parent directories as needed.
func (m *Map) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := m.Render(f); err != nil {
		return err
	}
	m.logger.Infof("Saved map to %s", path)
	return nil
}
