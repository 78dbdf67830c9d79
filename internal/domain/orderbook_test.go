package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(price, qty string) PriceLevel {
	return PriceLevel{Price: decimal.RequireFromString(price), Quantity: decimal.RequireFromString(qty)}
}

func TestNewPriceLevel(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		quantity  string
		shouldErr bool
	}{
		{name: "valid", price: "10.5", quantity: "2"},
		{name: "zero quantity allowed", price: "10.5", quantity: "0"},
		{name: "zero price", price: "0", quantity: "1", shouldErr: true},
		{name: "negative price", price: "-1", quantity: "1", shouldErr: true},
		{name: "negative quantity", price: "1", quantity: "-0.1", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewPriceLevel(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.quantity))
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Valid())
		})
	}
}

func TestPriceLevel_String(t *testing.T) {
	assert.Equal(t, "2 @ 10.5", level("10.5", "2").String())
	assert.Equal(t, "0.00012345 @ 612.3456789", level("612.3456789", "0.00012345").String())
}

func TestOrderBook_BestAndSpread(t *testing.T) {
	book := OrderBook{
		Bids: []PriceLevel{level("10.5", "2"), level("10.4", "1")},
		Asks: []PriceLevel{level("10.6", "3")},
	}

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, "10.5", bid.Price.String())

	ask, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "10.6", ask.Price.String())

	spread, ok := book.Spread()
	require.True(t, ok)
	assert.True(t, spread.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, 2, book.Depth())

	_, ok = OrderBook{}.Spread()
	assert.False(t, ok)
	assert.True(t, OrderBook{}.Empty())
}

func TestOrderBook_CheckOrdering(t *testing.T) {
	ordered := OrderBook{
		Bids: []PriceLevel{level("10.5", "2"), level("10.4", "1"), level("10.4", "5")},
		Asks: []PriceLevel{level("10.6", "3"), level("10.7", "1")},
	}
	assert.NoError(t, ordered.CheckOrdering())

	badBids := OrderBook{Bids: []PriceLevel{level("10.4", "1"), level("10.5", "2")}}
	err := badBids.CheckOrdering()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bids out of order at index 1")
	assert.Contains(t, fmt.Sprintf("%+v", err), "CheckOrdering", "error carries a stack trace")

	badAsks := OrderBook{Asks: []PriceLevel{level("10.7", "1"), level("10.6", "3")}}
	err = badAsks.CheckOrdering()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asks out of order at index 1")

	// checking must not reorder
	assert.Equal(t, "10.4", badBids.Bids[0].Price.String())
}

func TestNewPriceLevel_ErrorHasStack(t *testing.T) {
	_, err := NewPriceLevel(decimal.Zero, decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Contains(t, fmt.Sprintf("%+v", err), "NewPriceLevel")
}
