package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/database"
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
	bidsFile := flag.String("bids", "bids_panel_final_ds.csv", "Listings CSV in the data directory")
	flag.Parse()

	// Migrations go through the read-side handle so both halves agree on
	// the schema.
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	store, err := database.OpenStore(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database for writing")
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
	if err := database.ReplaceDeals(store, deals); err != nil {
		logger.WithError(err).Fatal("Failed to store deals")
	}
	logger.Infof("Stored %d deals", len(deals))

	bidsPath := cfg.DataPath(*bidsFile)
	bidsTable, err := tabular.Load(bidsPath, tabular.Options{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load bids")
	}
	bids, err := stats.BidRows(bidsTable, bidsPath, stats.DefaultBidColumns)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse bids")
	}
	if err := database.ReplaceBids(store, bids); err != nil {
		logger.WithError(err).Fatal("Failed to store bids")
	}
	logger.Infof("Stored %d bids", len(bids))

	metrics := stats.Aggregate(deals)
	if err := database.ReplaceMetrics(store, metrics); err != nil {
		logger.WithError(err).Fatal("Failed to store quarter metrics")
	}
	logger.Infof("Stored metrics for %d quarters", len(metrics))
}
