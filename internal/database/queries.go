package database

import (
	"database/sql"
	"math"

	"quartermaps/internal/models"
)

// GetQuarterMetrics returns every stored metric row ordered by quarter id.
// A stored NULL geometric mean comes back as NaN, matching the in-memory
// convention.
func (d *Database) GetQuarterMetrics() ([]models.QuarterMetric, error) {
	rows, err := d.db.Query(`
		SELECT quarter_cad_number, count, arith_mean, geom_mean, median
		FROM quarter_metrics
		ORDER BY quarter_cad_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []models.QuarterMetric
	for rows.Next() {
		m, err := scanMetric(rows.Scan)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// GetQuarterMetric returns the metric row for one quarter, or nil when the
// quarter is unknown.
func (d *Database) GetQuarterMetric(cadnum string) (*models.QuarterMetric, error) {
	row := d.db.QueryRow(`
		SELECT quarter_cad_number, count, arith_mean, geom_mean, median
		FROM quarter_metrics
		WHERE quarter_cad_number = ?
	`, cadnum)

	m, err := scanMetric(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetDeals returns all stored deals.
func (d *Database) GetDeals() ([]models.Deal, error) {
	rows, err := d.db.Query(`
		SELECT id, quarter_cad_number, price_per_sqm
		FROM deals
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var deal models.Deal
		if err := rows.Scan(&deal.ID, &deal.Quarter, &deal.PricePerSqm); err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// GetBids returns all stored bids.
func (d *Database) GetBids() ([]models.Bid, error) {
	rows, err := d.db.Query(`
		SELECT id, COALESCE(address, ''), latitude, longitude, price_per_sqm, COALESCE(total_price, '')
		FROM bids
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		var bid models.Bid
		if err := rows.Scan(&bid.ID, &bid.Address, &bid.Latitude, &bid.Longitude, &bid.PricePerSqm, &bid.TotalPrice); err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

func scanMetric(scan func(dest ...any) error) (models.QuarterMetric, error) {
	var m models.QuarterMetric
	var arith, geom, median sql.NullFloat64
	if err := scan(&m.Quarter, &m.Count, &arith, &geom, &median); err != nil {
		return m, err
	}
	m.ArithMean = nullToNaN(arith)
	m.GeomMean = nullToNaN(geom)
	m.Median = nullToNaN(median)
	return m, nil
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
