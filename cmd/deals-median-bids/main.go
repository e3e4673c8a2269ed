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
	bidsFile := flag.String("bids", "bids_panel_final_ds.csv", "Listings CSV in the data directory")
	output := flag.String("output", "", "Output HTML path (defaults to deals_median_with_bids.html in the maps directory)")
	flag.Parse()

	if *output == "" {
		*output = cfg.MapPath("deals_median_with_bids.html")
	}

	// Unlike deals-median-map there is no recompute fallback here: the
	// cache is the contract.
	metricsPath, err := config.Require(cfg.DataPath("deals_quarter_metrics.csv"))
	if err != nil {
		logger.WithError(err).Fatal("Metrics cache is missing; run quarter-metrics first")
	}
	metrics, err := stats.ReadMetricsCSV(metricsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read metrics cache")
	}

	bidsPath := cfg.DataPath(*bidsFile)
	bidsTable, err := tabular.Load(bidsPath, tabular.Options{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load bids")
	}
	bids, err := stats.BidRows(bidsTable, bidsPath, stats.DefaultBidColumns)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse bids")
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

	m := mapping.New("Медиана цен сделок и предложения", centerLat, centerLon, city.ZoomLevel, mapping.DefaultTiles, logger)
	m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
		Field:      "median",
		Name:       "Сделки: медиана цены за кв.м",
		Show:       true,
		Palette:    colorscale.YlOrRd,
		CountAlias: "Сделок",
	})
	m.AddBordersLayer(fc, "")
	m.AddBidsLayer(bids, mapping.BidsLayer{
		FixedColor: "black",
		Radius:     6,
		ShowTotal:  true,
	})

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}
