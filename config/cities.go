package config

// City holds the default view for a supported city.
type City struct {
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedCities is a list of cities the map commands know presets for.
var SupportedCities = []City{
	{
		Name:      "saint-petersburg",
		Center:    []float64{59.9343, 30.3351},
		ZoomLevel: 11,
	},
	{
		Name:      "petrogradskiy",
		Center:    []float64{59.9625, 30.3116},
		ZoomLevel: 13,
	},
	// Add more cities here as needed
}

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name
func GetCityByName(name string) *City {
	for _, city := range SupportedCities {
		if city.Name == name {
			return &city
		}
	}
	return nil
}

// LatLon returns the preset center in (lat, lon) order.
func (c *City) LatLon() (float64, float64) {
	return c.Center[0], c.Center[1]
}
