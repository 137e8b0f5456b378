package models

import "time"

// RealizedLot records a fully or partially closed position as imported from
// the broker's realized-P&L export. SecurityID may be blank; several lots
// may describe the same security (partial exits over time).
type RealizedLot struct {
	SecurityID       string     `json:"security_id,omitempty"`
	DisplayName      string     `json:"display_name"`
	Sector           string     `json:"sector,omitempty"`
	ClosedQuantity   float64    `json:"closed_quantity"`
	BuyValue         float64    `json:"buy_value"`
	SellValue        float64    `json:"sell_value"`
	BuyPrice         float64    `json:"buy_price"`
	SellPrice        float64    `json:"sell_price"`
	BuyDate          *time.Time `json:"buy_date,omitempty"`
	SellDate         *time.Time `json:"sell_date,omitempty"`
	RealizedPLAmount float64    `json:"realized_pl_amount"`
}

// Key returns the lot's identity key: the normalized security ID when
// present, else the normalized display name. The name fallback is a
// deliberate accommodation for exports that omit identifiers.
func (l RealizedLot) Key() string {
	if id := NormalizeID(l.SecurityID); id != "" {
		return id
	}
	return NormalizeName(l.DisplayName)
}

// RealizedStockSummary is the per-security aggregate of one or more
// realized lots plus the security's current price, produced by the
// realized-position reconciler.
type RealizedStockSummary struct {
	SecurityID     string        `json:"security_id,omitempty"`
	DisplayName    string        `json:"display_name"`
	Sector         string        `json:"sector,omitempty"`
	QtySold        float64       `json:"qty_sold"`
	AvgCost        float64       `json:"avg_cost"`
	AvgSoldPrice   float64       `json:"avg_sold_price"`
	TotalInvested  float64       `json:"total_invested"`
	FirstBuyDate   *time.Time    `json:"first_buy_date,omitempty"`
	LastSoldDate   *time.Time    `json:"last_sold_date,omitempty"`
	CurrentValue   float64       `json:"current_value"`
	RealizedPL     float64       `json:"realized_pl"`
	UnrealizedPL   float64       `json:"unrealized_pl"`
	TotalPL        float64       `json:"total_pl"`
	TotalPLPercent float64       `json:"total_pl_percent"`
	XIRR           float64       `json:"xirr"`
	CAGR           float64       `json:"cagr"`
	HoldingPeriod  HoldingPeriod `json:"holding_period"`
}

// Key returns the summary's identity key, mirroring RealizedLot.Key.
func (s RealizedStockSummary) Key() string {
	if id := NormalizeID(s.SecurityID); id != "" {
		return id
	}
	return NormalizeName(s.DisplayName)
}
