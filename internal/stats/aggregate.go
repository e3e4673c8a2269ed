// Package stats turns raw deal and bid tables into per-quarter price
// aggregates.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"quartermaps/internal/models"
	"quartermaps/internal/tabular"
)

// Default column names in the deal panels.
const (
	QuarterColumn = "quarter_cad_number"
	PriceColumn   = "price_per_sqm"
)

// DealRows extracts (quarter, price) pairs from a table. The quarter id is
// kept as a string; prices that fail to parse or are not strictly positive
// are dropped, so every surviving row can enter the aggregates.
func DealRows(table *tabular.Table, path string) ([]models.Deal, error) {
	if err := tabular.RequireColumns(table, path, QuarterColumn, PriceColumn); err != nil {
		return nil, err
	}

	var deals []models.Deal
	for i := range table.Rows {
		price, ok := parseFloat(table.Get(i, PriceColumn))
		if !ok || price <= 0 {
			continue
		}
		deals = append(deals, models.Deal{
			Quarter:     strings.TrimSpace(table.Get(i, QuarterColumn)),
			PricePerSqm: price,
		})
	}
	return deals, nil
}

// Aggregate groups deals by quarter and computes count, arithmetic mean,
// geometric mean and median of price per square meter. The result holds one
// row per distinct quarter, sorted by quarter id.
func Aggregate(deals []models.Deal) []models.QuarterMetric {
	groups := make(map[string][]float64)
	for _, d := range deals {
		groups[d.Quarter] = append(groups[d.Quarter], d.PricePerSqm)
	}

	quarters := make([]string, 0, len(groups))
	for q := range groups {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	metrics := make([]models.QuarterMetric, 0, len(quarters))
	for _, q := range quarters {
		prices := groups[q]
		metrics = append(metrics, models.QuarterMetric{
			Quarter:   q,
			Count:     len(prices),
			ArithMean: stat.Mean(prices, nil),
			GeomMean:  GeometricMean(prices),
			Median:    Median(prices),
		})
	}
	return metrics
}

// GeometricMean computes exp(mean(ln x)) over the strictly positive values
// only. When no positive values exist the result is NaN; the caller keeps
// the group with its other statistics intact.
func GeometricMean(values []float64) float64 {
	var positive []float64
	for _, v := range values {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return math.NaN()
	}
	return stat.GeometricMean(positive, nil)
}

// Median returns the middle value, averaging the two middle order
// statistics for even-sized input. NaN for empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MetricValue returns the named statistic from a metric row.
func MetricValue(m models.QuarterMetric, field string) float64 {
	switch field {
	case "arith_mean":
		return m.ArithMean
	case "geom_mean":
		return m.GeomMean
	case "median":
		return m.Median
	default:
		return math.NaN()
	}
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
