package models

// Holding represents an open position in a portfolio. One row per
// (portfolio, security) with open quantity > 0; the row set is replaced
// wholesale on each ingestion cycle.
type Holding struct {
	SecurityID          string  `json:"security_id"`
	DisplayName         string  `json:"display_name"`
	Sector              string  `json:"sector,omitempty"`
	OpenQuantity        float64 `json:"open_quantity"`
	AvgCost             float64 `json:"avg_cost"`
	InvestedAmount      float64 `json:"invested_amount"`
	MarketPrice         float64 `json:"market_price"`
	MarketValue         float64 `json:"market_value"`
	UnrealizedPLAmount  float64 `json:"unrealized_pl_amount"`
	UnrealizedPLPercent float64 `json:"unrealized_pl_percent"`

	// Attached during analytics, never persisted back. Defaulted to zero
	// values whenever the underlying computation cannot produce a result.
	XIRR          float64       `json:"xirr"`
	CAGR          float64       `json:"cagr"`
	HoldingPeriod HoldingPeriod `json:"holding_period"`
}

// HoldingPeriod is a decomposed holding duration. Days is only set for
// realized positions held under a month.
type HoldingPeriod struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days,omitempty"`
}

// Key returns the holding's identity key: the normalized security ID, or
// the normalized display name when the identifier is blank.
func (h Holding) Key() string {
	if id := NormalizeID(h.SecurityID); id != "" {
		return id
	}
	return NormalizeName(h.DisplayName)
}
