package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSnapshot order book and last trade price captured in one poll cycle.
type MarketSnapshot struct {
	// ID groups everything fetched in the same cycle.
	ID string
	// Symbol exchange symbol, e.g. BNBUSDC.
	Symbol string
	// Timestamp moment the depth response was received.
	Timestamp time.Time
	// Book normalized depth.
	Book OrderBook
	// LastPrice last trade price, nil when not fetched.
	LastPrice *decimal.Decimal
}

// HasLastPrice reports whether the snapshot carries a last trade price.
func (s MarketSnapshot) HasLastPrice() bool {
	return s.LastPrice != nil
}
