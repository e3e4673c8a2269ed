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

	cityName := flag.String("city", "saint-petersburg", "City preset for the initial zoom")
	dealsFile := flag.String("deals", "deals_panel_final_ds.csv", "Deals CSV (semicolon delimited) in the data directory")
	bidsFile := flag.String("bids", "bids_panel_final_ds.csv", "Listings CSV in the data directory")
	geojsonFile := flag.String("geojson", "78.geojson", "Quarter boundaries GeoJSON in the geojson directory")
	output := flag.String("output", "", "Output HTML path (defaults to deals_bids_heatmap.html in the maps directory)")
	flag.Parse()

	if *output == "" {
		*output = cfg.MapPath("deals_bids_heatmap.html")
	}

	dealsPath := cfg.DataPath(*dealsFile)
	dealsTable, err := tabular.Load(dealsPath, tabular.Options{Delimiter: ';'})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load deals")
	}
	deals, err := stats.DealRows(dealsTable, dealsPath)
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

	bidsPath := cfg.DataPath(*bidsFile)
	bidsTable, err := tabular.Load(bidsPath, tabular.Options{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load bids")
	}
	bids, err := stats.BidRows(bidsTable, bidsPath, stats.DefaultBidColumns)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse bids")
	}

	city := config.GetCityByName(*cityName)
	if city == nil {
		logger.Fatalf("Unknown city preset %q (known: %v)", *cityName, config.GetCityNames())
	}

	// The center follows the listings; an empty listing set is fatal, not
	// a preset fallback.
	centerLat, centerLon, err := stats.MeanLocation(bids)
	if err != nil {
		logger.WithError(err).Fatal("Failed to place map center")
	}

	m := mapping.New("Сделки и предложения", centerLat, centerLon, city.ZoomLevel, mapping.DefaultTiles, logger)
	m.AddMetricLayer(filtered, metrics, mapping.MetricLayer{
		Field:      "arith_mean",
		Name:       "Среднее арифм. цены сделок",
		Show:       true,
		Palette:    colorscale.YlOrRd,
		CountAlias: "Число сделок",
	})
	m.AddMetricLayer(filtered, metrics, mapping.MetricLayer{
		Field:      "geom_mean",
		Name:       "Среднее геом. цены сделок",
		Palette:    colorscale.YlOrRd,
		CountAlias: "Число сделок",
	})
	m.AddMetricLayer(filtered, metrics, mapping.MetricLayer{
		Field:      "median",
		Name:       "Медиана цены сделок",
		Palette:    colorscale.YlOrRd,
		CountAlias: "Число сделок",
	})
	m.AddBidsLayer(bids, mapping.BidsLayer{
		Caption: "Предложения: цена за кв.м",
		Palette: colorscale.Blues,
		Radius:  4,
	})

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}
