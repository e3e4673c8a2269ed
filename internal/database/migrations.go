package database

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS deals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quarter_cad_number TEXT NOT NULL,
			price_per_sqm REAL NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_deals_quarter
		ON deals(quarter_cad_number);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS bids (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			price_per_sqm REAL NOT NULL,
			total_price TEXT
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS quarter_metrics (
			quarter_cad_number TEXT PRIMARY KEY,
			count INTEGER NOT NULL,
			arith_mean REAL,
			geom_mean REAL,
			median REAL
		);
	`)
	return err
}
