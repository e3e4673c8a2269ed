package database

import (
	"fmt"
	"math"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quartermaps/internal/models"
)

// gorm handles the batch write path of the ingest command; reads go through
// the plain database/sql queries.

type dealRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Quarter     string  `gorm:"column:quarter_cad_number"`
	PricePerSqm float64 `gorm:"column:price_per_sqm"`
}

func (dealRecord) TableName() string { return "deals" }

type bidRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Address     string  `gorm:"column:address"`
	Latitude    float64 `gorm:"column:latitude"`
	Longitude   float64 `gorm:"column:longitude"`
	PricePerSqm float64 `gorm:"column:price_per_sqm"`
	TotalPrice  string  `gorm:"column:total_price"`
}

func (bidRecord) TableName() string { return "bids" }

type metricRecord struct {
	Quarter   string   `gorm:"column:quarter_cad_number;primaryKey"`
	Count     int      `gorm:"column:count"`
	ArithMean *float64 `gorm:"column:arith_mean"`
	GeomMean  *float64 `gorm:"column:geom_mean"`
	Median    *float64 `gorm:"column:median"`
}

func (metricRecord) TableName() string { return "quarter_metrics" }

// OpenStore opens the gorm handle used for batch writes.
func OpenStore(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dbPath, err)
	}
	return db, nil
}

// ReplaceDeals swaps the stored deal set for the given one inside a single
// transaction.
func ReplaceDeals(db *gorm.DB, deals []models.Deal) error {
	records := make([]dealRecord, len(deals))
	for i, d := range deals {
		records[i] = dealRecord{Quarter: d.Quarter, PricePerSqm: d.PricePerSqm}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM deals").Error; err != nil {
			return fmt.Errorf("failed to clear deals: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to insert deals batch: %w", err)
		}
		return nil
	})
}

// ReplaceBids swaps the stored bid set for the given one inside a single
// transaction.
func ReplaceBids(db *gorm.DB, bids []models.Bid) error {
	records := make([]bidRecord, len(bids))
	for i, b := range bids {
		records[i] = bidRecord{
			Address:     b.Address,
			Latitude:    b.Latitude,
			Longitude:   b.Longitude,
			PricePerSqm: b.PricePerSqm,
			TotalPrice:  b.TotalPrice,
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM bids").Error; err != nil {
			return fmt.Errorf("failed to clear bids: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to insert bids batch: %w", err)
		}
		return nil
	})
}

// ReplaceMetrics swaps the cached metric rows. NaN statistics are stored as
// NULL.
func ReplaceMetrics(db *gorm.DB, metrics []models.QuarterMetric) error {
	records := make([]metricRecord, len(metrics))
	for i, m := range metrics {
		records[i] = metricRecord{
			Quarter:   m.Quarter,
			Count:     m.Count,
			ArithMean: floatPtr(m.ArithMean),
			GeomMean:  floatPtr(m.GeomMean),
			Median:    floatPtr(m.Median),
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM quarter_metrics").Error; err != nil {
			return fmt.Errorf("failed to clear quarter metrics: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to insert metrics batch: %w", err)
		}
		return nil
	})
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
