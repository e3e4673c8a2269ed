package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/colorscale"
	"quartermaps/internal/geometry"
	"quartermaps/internal/mapping"
	"quartermaps/internal/stats"
	"quartermaps/internal/tabular"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	cityName := flag.String("city", "petrogradskiy", "City preset for zoom and fallback center")
	input := flag.String("input", "brick_deal_clean.csv", "Deals CSV of unknown delimiter/encoding")
	geojsonFile := flag.String("geojson", "78.geojson", "Quarter boundaries GeoJSON in the geojson directory")
	output := flag.String("output", "", "Output HTML path (defaults to brick_deal_median_map.html in the maps directory)")
	flag.Parse()

	if *output == "" {
		*output = cfg.MapPath("brick_deal_median_map.html")
	}

	dealsPath := cfg.DataPath(*input)
	table, err := tabular.LoadLegacy(dealsPath, stats.PriceColumn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load deals")
	}
	deals, err := stats.DealRows(table, dealsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse deals")
	}
	if len(deals) == 0 {
		logger.Fatal("No deals with a positive price per square meter")
	}
	metrics := stats.Aggregate(deals)

	allowed := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		allowed[m.Quarter] = struct{}{}
	}

	fc, err := geometry.LoadCollection(cfg.GeoJSONPath(*geojsonFile))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load quarter boundaries")
	}
	filtered := geometry.FilterByQuarters(fc, allowed)

	city := config.GetCityByName(*cityName)
	if city == nil {
		logger.Fatalf("Unknown city preset %q (known: %v)", *cityName, config.GetCityNames())
	}
	centerLat, centerLon := city.LatLon()
	if lat, lon, err := geometry.BoundsCenter(filtered); err == nil {
		centerLat, centerLon = lat, lon
	} else {
		logger.WithError(err).Warn("Using the city preset center")
	}

	m := mapping.New("Медиана цен кирпичных сделок", centerLat, centerLon, city.ZoomLevel, mapping.DefaultTiles, logger)
	m.AddMetricLayer(filtered, metrics, mapping.MetricLayer{
		Field:   "median",
		Name:    "Медиана цены за кв.м",
		Show:    true,
		Palette: colorscale.YlOrRd,
	})
	m.AddLabelsLayer(filtered, metrics, mapping.LabelsLayer{})
	m.AddBordersLayer(filtered, "Границы")

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}
