package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Directory with tabular datasets (deals, bids, metric caches)
	DataDir string `env:"QM_DATA_DIR" envDefault:"data"`

	// Directory with quarter boundary GeoJSON files
	GeoJSONDir string `env:"QM_GEOJSON_DIR" envDefault:"geojsons"`

	// Directory the generated HTML maps are written to
	MapsDir string `env:"QM_MAPS_DIR" envDefault:"maps"`

	// Directory for miscellaneous generated artifacts
	OutputsDir string `env:"QM_OUTPUTS_DIR" envDefault:"outputs"`

	// SQLite database used by the ingest and server commands
	DatabasePath string `env:"QM_DATABASE_PATH" envDefault:"database/quarters.db"`

	Server struct {
		Port int `env:"QM_SERVER_PORT" envDefault:"5250"`

		// Comma-separated list of allowed CORS origins
		AllowOrigins []string `env:"QM_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DataPath resolves a dataset name against the data directory.
// Absolute names are used as given.
func (c *Config) DataPath(name string) string {
	return Resolve(c.DataDir, name)
}

// GeoJSONPath resolves a boundary file name against the geojson directory.
func (c *Config) GeoJSONPath(name string) string {
	return Resolve(c.GeoJSONDir, name)
}

// MapPath resolves an output map name against the maps directory.
func (c *Config) MapPath(name string) string {
	return Resolve(c.MapsDir, name)
}
