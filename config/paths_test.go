package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		input    string
		expected string
	}{
		{
			name:     "Relative name joins base",
			base:     "data",
			input:    "deals.csv",
			expected: filepath.Join("data", "deals.csv"),
		},
		{
			name:     "Absolute name wins",
			base:     "data",
			input:    "/tmp/deals.csv",
			expected: "/tmp/deals.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.base, tt.input))
		})
	}
}

func TestRequire(t *testing.T) {
	dir := t.TempDir()

	existing := filepath.Join(dir, "deals.csv")
	require.NoError(t, os.WriteFile(existing, []byte("a,b\n"), 0644))

	path, err := Require(existing)
	assert.NoError(t, err)
	assert.Equal(t, existing, path)

	_, err = Require(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "maps", "petro")

	require.NoError(t, EnsureDir(nested))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is a no-op
	assert.NoError(t, EnsureDir(nested))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "geojsons", cfg.GeoJSONDir)
	assert.Equal(t, "maps", cfg.MapsDir)
	assert.Equal(t, "outputs", cfg.OutputsDir)
	assert.Equal(t, 5250, cfg.Server.Port)
}

func TestGetCityByName(t *testing.T) {
	city := GetCityByName("saint-petersburg")
	require.NotNil(t, city)
	assert.Equal(t, 11, city.ZoomLevel)

	assert.Nil(t, GetCityByName("unknown"))
	assert.Contains(t, GetCityNames(), "petrogradskiy")
}

func TestCityLatLon(t *testing.T) {
	city := GetCityByName("petrogradskiy")
	require.NotNil(t, city)

	lat, lon := city.LatLon()
	assert.Equal(t, 59.9625, lat)
	assert.Equal(t, 30.3116, lon)
	assert.Equal(t, 13, city.ZoomLevel)
}
