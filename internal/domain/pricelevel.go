// Package domain defines core data structures used throughout the order book watcher.
package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceLevel aggregated quantity resting at a single price.
type PriceLevel struct {
	// Price level price in quote currency.
	Price decimal.Decimal
	// Quantity aggregated base amount at Price.
	Quantity decimal.Decimal
}

// NewPriceLevel constructs a level, rejecting non-positive prices and negative quantities.
func NewPriceLevel(price, quantity decimal.Decimal) (PriceLevel, error) {
	level := PriceLevel{Price: price, Quantity: quantity}
	if !level.Valid() {
		return PriceLevel{}, errors.Errorf("invalid price level %s @ %s", quantity.String(), price.String())
	}

	return level, nil
}

// Valid reports whether the price is strictly positive and the quantity non-negative.
func (l PriceLevel) Valid() bool {
	return l.Price.IsPositive() && !l.Quantity.IsNegative()
}

// String returns the "{quantity} @ {price}" form.
func (l PriceLevel) String() string {
	return fmt.Sprintf("%s @ %s", l.Quantity.String(), l.Price.String())
}
