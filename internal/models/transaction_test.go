package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTradeValue(t *testing.T) {
	tests := []struct {
		name     string
		txn      Transaction
		expected float64
	}{
		{
			"explicit value wins",
			Transaction{Type: TransactionBuy, Price: 100, Quantity: 10, Charges: 5, Value: 950},
			950,
		},
		{
			"buy adds charges",
			Transaction{Type: TransactionBuy, Price: 100, Quantity: 10, Charges: 5},
			1005,
		},
		{
			"sell subtracts charges",
			Transaction{Type: TransactionSell, Price: 150, Quantity: 10, Charges: 5},
			1495,
		},
		{
			"dividend ignores charges",
			Transaction{Type: TransactionDividend, Price: 2.5, Quantity: 100, Charges: 5},
			250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.txn.TradeValue(), 1e-9)
		})
	}
}

func TestNearestClose(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	series := PriceSeries{
		{Date: day(1), Close: 100},
		{Date: day(10), Close: 110},
		{Date: day(20), Close: 120},
	}

	price, ok := series.NearestClose(day(9))
	assert.True(t, ok)
	assert.Equal(t, 110.0, price)

	// Before the series start and past its end.
	price, _ = series.NearestClose(day(1).AddDate(0, -1, 0))
	assert.Equal(t, 100.0, price)
	price, _ = series.NearestClose(day(20).AddDate(0, 1, 0))
	assert.Equal(t, 120.0, price)

	// Equidistant targets keep the earlier point.
	price, _ = series.NearestClose(day(15))
	assert.Equal(t, 110.0, price)

	_, ok = PriceSeries{}.NearestClose(day(1))
	assert.False(t, ok)
}
