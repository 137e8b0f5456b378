package models

import "time"

// TransactionType partitions the transaction ledger. Every transaction
// contributes to exactly one of the three buckets.
type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionDividend TransactionType = "DIVIDEND"
)

// Transaction is one row of the append-only trade ledger, read-only to the
// analytics engine. All calculations assume chronological ordering by Date.
type Transaction struct {
	SecurityID  string          `json:"security_id"`
	DisplayName string          `json:"display_name"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	Quantity    float64         `json:"quantity"`
	Price       float64         `json:"price"`
	Value       float64         `json:"value"`   // adjusted trade value; 0 when not supplied upstream
	Charges     float64         `json:"charges"`
}

// TradeValue returns the effective cash value of the transaction: the
// explicit adjusted value when present, else price × quantity with charges
// added for buys and subtracted for sells. Dividends carry no charges.
func (t Transaction) TradeValue() float64 {
	if t.Value != 0 {
		return t.Value
	}
	gross := t.Price * t.Quantity
	switch t.Type {
	case TransactionBuy:
		return gross + t.Charges
	case TransactionSell:
		return gross - t.Charges
	default:
		return gross
	}
}

// Key returns the transaction's identity key for joins against holdings
// and realized lots.
func (t Transaction) Key() string {
	if id := NormalizeID(t.SecurityID); id != "" {
		return id
	}
	return NormalizeName(t.DisplayName)
}

// TransactionSummary is the thinned ledger row exposed in the analytics
// payload.
type TransactionSummary struct {
	SecurityID string          `json:"security_id"`
	Date       time.Time       `json:"date"`
	Type       TransactionType `json:"type"`
	Price      float64         `json:"price"`
	Quantity   float64         `json:"quantity"`
	Value      float64         `json:"value"`
}
