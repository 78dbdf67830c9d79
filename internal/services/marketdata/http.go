package marketdata

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/depthwatch/internal/clients"
	"github.com/vadiminshakov/depthwatch/internal/domain"
	"github.com/vadiminshakov/depthwatch/internal/services/parser"
)

type rawFetcher interface {
	FetchDepth(ctx context.Context, symbol string, limit int) ([]byte, error)
	FetchPrice(ctx context.Context, symbol string) ([]byte, error)
}

// HTTPSource fetches raw JSON with clients.MarketDataClient and normalizes it with parser.
type HTTPSource struct {
	fetcher  rawFetcher
	endpoint string
}

// NewHTTPSource creates a source on top of a raw market data client.
func NewHTTPSource(client *clients.MarketDataClient, baseURL string) *HTTPSource {
	return &HTTPSource{fetcher: client, endpoint: baseURL}
}

// Depth fetches and parses the depth endpoint.
func (s *HTTPSource) Depth(ctx context.Context, symbol string, limit int) (domain.OrderBook, error) {
	raw, err := s.fetcher.FetchDepth(ctx, symbol, limit)
	if err != nil {
		return domain.OrderBook{}, err
	}

	return parser.ParseOrderBook(raw)
}

// LastPrice fetches and parses the ticker price endpoint.
func (s *HTTPSource) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	raw, err := s.fetcher.FetchPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	return parser.ParsePrice(raw)
}

func (s *HTTPSource) Endpoint() string {
	return s.endpoint
}
