// Package geometry loads cadastral quarter boundaries and joins them to
// computed statistics by quarter id.
package geometry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"quartermaps/config"
)

// LoadCollection reads a GeoJSON feature collection from disk.
func LoadCollection(path string) (*geojson.FeatureCollection, error) {
	path, err := config.Require(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON %s: %w", path, err)
	}
	return fc, nil
}

// SaveCollection writes a feature collection, creating parent directories
// as needed.
func SaveCollection(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
