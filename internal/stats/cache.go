package stats

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"quartermaps/internal/models"
	"quartermaps/internal/tabular"
)

// MetricsColumns is the schema of the on-disk quarter metrics cache.
var MetricsColumns = []string{"quarter_cad_number", "arith_mean", "geom_mean", "median", "count"}

// WriteMetricsCSV persists the computed metrics. The cache is a convenience
// copy only; aggregation can always be redone from the deals panel. NaN
// values are written as empty cells.
func WriteMetricsCSV(path string, metrics []models.QuarterMetric) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(MetricsColumns); err != nil {
		return err
	}
	for _, m := range metrics {
		record := []string{
			m.Quarter,
			formatFloat(m.ArithMean),
			formatFloat(m.GeomMean),
			formatFloat(m.Median),
			strconv.Itoa(m.Count),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMetricsCSV loads a cached metrics table, validating that every
// required column is present. Empty or unparseable statistic cells become
// NaN.
func ReadMetricsCSV(path string) ([]models.QuarterMetric, error) {
	table, err := tabular.Load(path, tabular.Options{})
	if err != nil {
		return nil, err
	}
	if err := tabular.RequireColumns(table, path, MetricsColumns...); err != nil {
		return nil, err
	}

	metrics := make([]models.QuarterMetric, 0, len(table.Rows))
	for i := range table.Rows {
		count := 0
		if v, ok := parseFloat(table.Get(i, "count")); ok {
			count = int(v)
		}
		metrics = append(metrics, models.QuarterMetric{
			Quarter:   table.Get(i, "quarter_cad_number"),
			Count:     count,
			ArithMean: floatOrNaN(table.Get(i, "arith_mean")),
			GeomMean:  floatOrNaN(table.Get(i, "geom_mean")),
			Median:    floatOrNaN(table.Get(i, "median")),
		})
	}
	return metrics, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatOrNaN(s string) float64 {
	if v, ok := parseFloat(s); ok {
		return v
	}
	return math.NaN()
}
