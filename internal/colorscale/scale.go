// Package colorscale maps metric values onto continuous color gradients
// for choropleth fills and legends.
package colorscale

import (
	"math"

	"github.com/mazznoer/colorgrad"
)

// Palette is a gradient constructor. The YlOrRd ramp is used for deal
// statistics, Blues for listing prices, YlGnBu for ad-hoc choropleths.
type Palette func() colorgrad.Gradient

var (
	YlOrRd Palette = colorgrad.YlOrRd
	Blues  Palette = colorgrad.Blues
	YlGnBu Palette = colorgrad.YlGnBu
)

// Scale maps a numeric domain onto a palette.
type Scale struct {
	grad colorgrad.Gradient

	Min float64
	Max float64
}

// Legend carries everything the map template needs to draw a gradient bar.
type Legend struct {
	Caption string   `json:"caption"`
	Stops   []string `json:"stops"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
}

// New builds a scale over the min/max of the given values, ignoring NaN.
// Returns ok=false when no usable value exists; callers skip the affected
// layer instead of treating that as an error.
func New(palette Palette, values []float64) (*Scale, bool) {
	var usable []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return nil, false
	}

	min, max := usable[0], usable[0]
	for _, v := range usable[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &Scale{grad: palette(), Min: min, Max: max}, true
}

// Hex returns the display color for a value, clamped to the domain. A
// zero-width domain collapses to a single mid-gradient color.
func (s *Scale) Hex(v float64) string {
	t := 0.5
	if s.Max > s.Min {
		t = (v - s.Min) / (s.Max - s.Min)
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}
	return s.grad.At(t).Hex()
}

// Legend samples the gradient into stops for the map template.
func (s *Scale) Legend(caption string) Legend {
	const stops = 9
	legend := Legend{Caption: caption, Min: s.Min, Max: s.Max}
	for i := 0; i < stops; i++ {
		legend.Stops = append(legend.Stops, s.grad.At(float64(i)/(stops-1)).Hex())
	}
	return legend
}
