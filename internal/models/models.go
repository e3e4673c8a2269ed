package models

// Deal is a single recorded transaction joined to a cadastral quarter.
type Deal struct {
	ID          int64   `json:"id"`
	Quarter     string  `json:"quarter_cad_number"`
	PricePerSqm float64 `json:"price_per_sqm"`
}

// Bid is an advertised listing with point coordinates.
type Bid struct {
	ID          int64   `json:"id"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PricePerSqm float64 `json:"price_per_sqm"`
	TotalPrice  string  `json:"total_price"`
}

// QuarterMetric holds the aggregate price statistics for one quarter.
// GeomMean is NaN when the group had no strictly positive prices; JSON and
// CSV representations render that as null / an empty cell.
type QuarterMetric struct {
	Quarter   string  `json:"quarter_cad_number"`
	Count     int     `json:"count"`
	ArithMean float64 `json:"arith_mean"`
	GeomMean  float64 `json:"geom_mean"`
	Median    float64 `json:"median"`
}
