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

	bidsFile := flag.String("bids", "bids_panel_final_ds.csv", "Listings CSV in the data directory")
	output := flag.String("output", "", "Output HTML path (defaults to bids_map.html in the maps directory)")
	flag.Parse()

	if *output == "" {
		*output = cfg.MapPath("bids_map.html")
	}

	bidsPath := cfg.DataPath(*bidsFile)
	table, err := tabular.Load(bidsPath, tabular.Options{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load bids")
	}
	bids, err := stats.BidRows(table, bidsPath, stats.DefaultBidColumns)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse bids")
	}

	centerLat, centerLon, err := stats.MeanLocation(bids)
	if err != nil {
		logger.WithError(err).Fatal("Failed to place map center")
	}

	m := mapping.New("Карта предложений", centerLat, centerLon, 12, mapping.DefaultTiles, logger)
	m.AddBidsLayer(bids, mapping.BidsLayer{
		Caption:   "Предложения: цена за кв.м (яркая шкала)",
		Palette:   colorscale.YlOrRd,
		ShowTotal: true,
	})

	// Quarter borders and deal metric fills are best-effort: the map is
	// still useful when only the listings file is present.
	geojsonPath := cfg.GeoJSONPath("78_filtered.geojson")
	metricsPath := cfg.DataPath("deals_quarter_metrics.csv")
	if fileExists(geojsonPath) {
		fc, err := geometry.LoadCollection(geojsonPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load quarter boundaries")
		}
		m.AddBordersLayer(fc, "")

		if fileExists(metricsPath) {
			metrics, err := stats.ReadMetricsCSV(metricsPath)
			if err != nil {
				logger.WithError(err).Fatal("Failed to read metrics cache")
			}
			m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
				Field:      "median",
				Name:       "Сделки: медиана цены за кв.м",
				Show:       true,
				Palette:    colorscale.YlOrRd,
				CountAlias: "Сделок",
			})
			m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
				Field:      "arith_mean",
				Name:       "Сделки: среднее арифм. цены за кв.м",
				Palette:    colorscale.YlOrRd,
				CountAlias: "Сделок",
			})
			m.AddMetricLayer(fc, metrics, mapping.MetricLayer{
				Field:      "geom_mean",
				Name:       "Сделки: среднее геом. цены за кв.м",
				Palette:    colorscale.YlOrRd,
				CountAlias: "Сделок",
			})
		}
	}

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
