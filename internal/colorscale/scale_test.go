package colorscale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmptyDomain(t *testing.T) {
	_, ok := New(YlOrRd, nil)
	assert.False(t, ok)

	_, ok = New(YlOrRd, []float64{math.NaN(), math.NaN()})
	assert.False(t, ok)
}

func TestNewIgnoresNaN(t *testing.T) {
	scale, ok := New(YlOrRd, []float64{math.NaN(), 10, 30})
	require.True(t, ok)
	assert.Equal(t, 10.0, scale.Min)
	assert.Equal(t, 30.0, scale.Max)
}

func TestHexEndpointsDiffer(t *testing.T) {
	scale, ok := New(YlOrRd, []float64{0, 100})
	require.True(t, ok)

	low := scale.Hex(0)
	high := scale.Hex(100)
	assert.NotEqual(t, low, high)

	// clamped outside the domain
	assert.Equal(t, low, scale.Hex(-50))
	assert.Equal(t, high, scale.Hex(200))
}

func TestHexZeroWidthDomain(t *testing.T) {
	scale, ok := New(Blues, []float64{42})
	require.True(t, ok)

	// every value collapses to a single color
	assert.Equal(t, scale.Hex(0), scale.Hex(42))
	assert.Equal(t, scale.Hex(42), scale.Hex(1e9))
}

func TestLegend(t *testing.T) {
	scale, ok := New(YlOrRd, []float64{10, 90})
	require.True(t, ok)

	legend := scale.Legend("Медиана цены за кв.м")
	assert.Equal(t, "Медиана цены за кв.м", legend.Caption)
	assert.Len(t, legend.Stops, 9)
	assert.Equal(t, 10.0, legend.Min)
	assert.Equal(t, 90.0, legend.Max)
	for _, stop := range legend.Stops {
		assert.Regexp(t, "^#[0-9a-f]{6}$", stop)
	}
}
