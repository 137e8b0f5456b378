package models

import "time"

// PricePoint represents one closing price for a security.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a security's price history, sorted ascending by date.
// It is append-only and refreshed outside the analytics engine.
type PriceSeries []PricePoint

// NearestClose returns the closing price whose date has minimum absolute
// distance to target; ties keep the earlier point. The second return value
// is false when the series is empty.
func (s PriceSeries) NearestClose(target time.Time) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	best := s[0]
	bestDist := absDuration(target.Sub(s[0].Date))
	for _, p := range s[1:] {
		if d := absDuration(target.Sub(p.Date)); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best.Close, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
