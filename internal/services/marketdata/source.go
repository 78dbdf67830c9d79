// Package marketdata provides order book and last price sources for a single symbol.
package marketdata

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/depthwatch/internal/domain"
)

// Source fetches normalized market data.
type Source interface {
	// Depth returns the order book for symbol, at most limit levels per side.
	Depth(ctx context.Context, symbol string, limit int) (domain.OrderBook, error)
	// LastPrice returns the last trade price for symbol.
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// Endpoint names the upstream for log context.
	Endpoint() string
}
