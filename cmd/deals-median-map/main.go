package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/colorscale"
	"quartermaps/internal/geometry"
	"quartermaps/internal/mapping"
	"quartermaps/internal/models"
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
	dealsFile := flag.String("deals", "deals_panel_final_ds.csv", "Deals CSV used when the metrics cache is absent")
	recompute := flag.Bool("recompute", false, "Ignore the metrics cache and aggregate from the deals CSV")
	output := flag.String("output", "", "Output HTML path (defaults to deals_median_map.html in the maps directory)")
	flag.Parse()

	if *output == "" {
		*output = cfg.MapPath("deals_median_map.html")
	}

	metrics, err := loadMetrics(cfg, *dealsFile, *recompute)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load quarter metrics")
	}

	fc, err := geometry.LoadCollection(cfg.GeoJSONPath("78_filtered.geojson"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load quarter boundaries")
	}

	city := config.GetCityByName(*cityName)
	if city == nil {
		logger.Fatalf("Unknown city preset %q (known: %v)", *cityName, config.GetCityNames())
	}
	centerLat, centerLon := city.LatLon()
	if lat, lon, err := geometry.BoundsCenter(fc); err == nil {
		centerLat, centerLon = lat, lon
	} else {
		logger.WithError(err).Warn("Using the city preset center")
	}

	m := mapping.New("Медиана цен сделок", centerLat, centerLon, city.ZoomLevel, mapping.DefaultTiles, logger)
	m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
		Field:      "median",
		Name:       "Сделки: медиана цены за кв.м",
		Show:       true,
		Palette:    colorscale.YlOrRd,
		CountAlias: "Сделок",
	})
	m.AddBordersLayer(fc, "")

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}

// loadMetrics prefers the CSV cache and falls back to aggregating the raw
// deals table when the cache is missing or a recompute was requested.
func loadMetrics(cfg *config.Config, dealsFile string, recompute bool) ([]models.QuarterMetric, error) {
	cachePath := cfg.DataPath("deals_quarter_metrics.csv")
	if !recompute {
		if _, err := os.Stat(cachePath); err == nil {
			return stats.ReadMetricsCSV(cachePath)
		}
	}

	dealsPath := cfg.DataPath(dealsFile)
	table, err := tabular.Load(dealsPath, tabular.Options{Delimiter: ';'})
	if err != nil {
		return nil, err
	}
	deals, err := stats.DealRows(table, dealsPath)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(deals), nil
}
