package stats

import (
	"fmt"
	"strings"

	"quartermaps/internal/models"
	"quartermaps/internal/tabular"
)

// BidColumns maps the source-specific listing export headers onto the bid
// fields. The defaults match the CIAN listing export.
type BidColumns struct {
	Latitude    string
	Longitude   string
	PricePerSqm string
	Address     string
	TotalPrice  string
}

// DefaultBidColumns are the headers of the listing panels shipped with the
// project.
var DefaultBidColumns = BidColumns{
	Latitude:    "Широта",
	Longitude:   "Долгота",
	PricePerSqm: "Цена за кв.м, руб.",
	Address:     "Адрес",
	TotalPrice:  "Цена, руб",
}

// BidRows extracts point-priced listings from a table. Price strings may
// carry thousands separators as spaces; rows missing coordinates or a
// parseable price are dropped.
func BidRows(table *tabular.Table, path string, cols BidColumns) ([]models.Bid, error) {
	if err := tabular.RequireColumns(table, path, cols.Latitude, cols.Longitude, cols.PricePerSqm); err != nil {
		return nil, err
	}

	var bids []models.Bid
	for i := range table.Rows {
		lat, latOK := parseFloat(table.Get(i, cols.Latitude))
		lon, lonOK := parseFloat(table.Get(i, cols.Longitude))
		price, priceOK := parseFloat(strings.ReplaceAll(table.Get(i, cols.PricePerSqm), " ", ""))
		if !latOK || !lonOK || !priceOK {
			continue
		}
		bids = append(bids, models.Bid{
			Address:     table.Get(i, cols.Address),
			Latitude:    lat,
			Longitude:   lon,
			PricePerSqm: price,
			TotalPrice:  table.Get(i, cols.TotalPrice),
		})
	}
	return bids, nil
}

// MeanLocation returns the mean bid coordinate, used as the map center for
// listing-driven maps. Errors when no bids survived filtering so the caller
// does not render an empty map silently.
func MeanLocation(bids []models.Bid) (lat, lon float64, err error) {
	if len(bids) == 0 {
		return 0, 0, fmt.Errorf("no bids with usable coordinates and price")
	}
	for _, b := range bids {
		lat += b.Latitude
		lon += b.Longitude
	}
	n := float64(len(bids))
	return lat / n, lon / n, nil
}
