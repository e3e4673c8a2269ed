package main

import (
	"flag"
	"os"

	"github.com/paulmach/orb/geojson"
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
	fileA := flag.String("file-a", "petrogradskiy_1703-1969.csv", "Deals CSV for the first period")
	fileB := flag.String("file-b", "petrogradskiy_1970-2025.csv", "Deals CSV for the second period")
	geojsonFile := flag.String("geojson", "78.geojson", "Quarter boundaries GeoJSON in the geojson directory")
	outA := flag.String("out-a", "", "Output HTML for the first period (defaults to petro_prices_1703_1969.html)")
	outB := flag.String("out-b", "", "Output HTML for the second period (defaults to petro_prices_1970_2025.html)")
	captionA := flag.String("caption-a", "Медиана цены за кв.м (1703-1969)", "Legend caption for the first period")
	captionB := flag.String("caption-b", "Медиана цены за кв.м (1970-2025)", "Legend caption for the second period")
	flag.Parse()

	if *outA == "" {
		*outA = cfg.MapPath("petro_prices_1703_1969.html")
	}
	if *outB == "" {
		*outB = cfg.MapPath("petro_prices_1970_2025.html")
	}

	metricsA, err := loadPeriod(cfg, *fileA)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load first period deals")
	}
	metricsB, err := loadPeriod(cfg, *fileB)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load second period deals")
	}

	// One shared boundary set: every quarter either period touched.
	allowed := make(map[string]struct{}, len(metricsA)+len(metricsB))
	for _, m := range metricsA {
		allowed[m.Quarter] = struct{}{}
	}
	for _, m := range metricsB {
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

	if err := buildPeriodMap(filtered, metricsA, *captionA, centerLat, centerLon, city.ZoomLevel, *outA, logger); err != nil {
		logger.WithError(err).Fatal("Failed to save first period map")
	}
	if err := buildPeriodMap(filtered, metricsB, *captionB, centerLat, centerLon, city.ZoomLevel, *outB, logger); err != nil {
		logger.WithError(err).Fatal("Failed to save second period map")
	}
}

// loadPeriod reads a semicolon-delimited cp1251 period dataset and
// aggregates it into quarter metrics.
func loadPeriod(cfg *config.Config, name string) ([]models.QuarterMetric, error) {
	path := cfg.DataPath(name)
	table, err := tabular.Load(path, tabular.Options{Delimiter: ';', Encoding: tabular.EncodingCP1251})
	if err != nil {
		return nil, err
	}
	deals, err := stats.DealRows(table, path)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(deals), nil
}

func buildPeriodMap(fc *geojson.FeatureCollection, metrics []models.QuarterMetric, caption string, centerLat, centerLon float64, zoom int, output string, logger *logrus.Logger) error {
	m := mapping.New(caption, centerLat, centerLon, zoom, mapping.DefaultTiles, logger)
	m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
		Field:   "median",
		Name:    caption,
		Show:    true,
		Palette: colorscale.YlOrRd,
	})
	m.AddBordersLayer(fc, "")
	m.AddLabelsLayer(fc, metrics, mapping.LabelsLayer{FullID: true})
	return m.Save(output)
}
