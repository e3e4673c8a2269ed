package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/geometry"
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

	dealsFile := flag.String("deals", "deals_panel_final_ds.csv", "Deals CSV (semicolon delimited) in the data directory")
	output := flag.String("output", "deals_quarter_metrics.csv", "Metrics cache destination in the data directory")
	geojsonFile := flag.String("geojson", "", "Optional boundaries GeoJSON; when set, a filtered copy is written")
	filteredOut := flag.String("filtered-output", "78_filtered.geojson", "Destination for the filtered GeoJSON")
	flag.Parse()

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

	cachePath := cfg.DataPath(*output)
	if err := stats.WriteMetricsCSV(cachePath, metrics); err != nil {
		logger.WithError(err).Fatal("Failed to write metrics cache")
	}
	logger.Infof("Wrote %d quarter metrics to %s", len(metrics), cachePath)

	if *geojsonFile != "" {
		allowed := make(map[string]struct{}, len(metrics))
		for _, m := range metrics {
			allowed[m.Quarter] = struct{}{}
		}
		fc, err := geometry.LoadCollection(cfg.GeoJSONPath(*geojsonFile))
		if err != nil {
			logger.WithError(err).Fatal("Failed to load quarter boundaries")
		}
		filtered := geometry.FilterByQuarters(fc, allowed)
		filteredPath := cfg.GeoJSONPath(*filteredOut)
		if err := geometry.SaveCollection(filteredPath, filtered); err != nil {
			logger.WithError(err).Fatal("Failed to write filtered boundaries")
		}
		logger.Infof("Wrote %d quarter polygons to %s", len(filtered.Features), filteredPath)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Quarter", "Count", "Arith mean", "Geom mean", "Median"})
	for _, m := range metrics {
		t.AppendRow(table.Row{
			m.Quarter,
			m.Count,
			fmtMetric(m.ArithMean),
			fmtMetric(m.GeomMean),
			fmtMetric(m.Median),
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"Total", len(deals), "", "", ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func fmtMetric(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.2f", v)
}
