package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderBook bid and ask levels exactly as ordered by the feed.
type OrderBook struct {
	// Bids buy levels, best first.
	Bids []PriceLevel
	// Asks sell levels, best first.
	Asks []PriceLevel
}

// Depth returns the row count needed to show both sides side by side.
func (b OrderBook) Depth() int {
	return max(len(b.Bids), len(b.Asks))
}

// Empty reports whether both sides have no levels.
func (b OrderBook) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// BestBid returns the highest bid.
func (b OrderBook) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask.
func (b OrderBook) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// Spread returns best ask minus best bid.
func (b OrderBook) Spread() (decimal.Decimal, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}

	return ask.Price.Sub(bid.Price), true
}

// CheckOrdering validates that bids descend and asks ascend by price.
// It never reorders; the first violation is reported.
func (b OrderBook) CheckOrdering() error {
	for i := 1; i < len(b.Bids); i++ {
		if b.Bids[i].Price.GreaterThan(b.Bids[i-1].Price) {
			return errors.Errorf("%s out of order at index %d: %s after %s",
				SideBid, i, b.Bids[i].Price.String(), b.Bids[i-1].Price.String())
		}
	}

	for i := 1; i < len(b.Asks); i++ {
		if b.Asks[i].Price.LessThan(b.Asks[i-1].Price) {
			return errors.Errorf("%s out of order at index %d: %s after %s",
				SideAsk, i, b.Asks[i].Price.String(), b.Asks[i-1].Price.String())
		}
	}

	return nil
}
