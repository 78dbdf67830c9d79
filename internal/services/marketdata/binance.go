package marketdata

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/depthwatch/internal/clients"
	"github.com/vadiminshakov/depthwatch/internal/domain"
	"github.com/vadiminshakov/depthwatch/internal/services/parser"
)

// BinanceSource reads the same depth and ticker endpoints through the go-binance SDK.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a new Binance SDK backed source.
func NewBinanceSource(client *binance.Client) *BinanceSource {
	return &BinanceSource{client: client}
}

// Depth fetches the order book from Binance.
func (s *BinanceSource) Depth(ctx context.Context, symbol string, limit int) (domain.OrderBook, error) {
	res, err := s.client.NewDepthService().
		Symbol(symbol).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return domain.OrderBook{}, s.fetchError("/api/v3/depth", err)
	}

	bidPairs := make([][2]string, 0, len(res.Bids))
	for _, b := range res.Bids {
		bidPairs = append(bidPairs, [2]string{b.Price, b.Quantity})
	}
	askPairs := make([][2]string, 0, len(res.Asks))
	for _, a := range res.Asks {
		askPairs = append(askPairs, [2]string{a.Price, a.Quantity})
	}

	bids, err := parser.ParseLevels(domain.SideBid, bidPairs)
	if err != nil {
		return domain.OrderBook{}, err
	}
	asks, err := parser.ParseLevels(domain.SideAsk, askPairs)
	if err != nil {
		return domain.OrderBook{}, err
	}

	return domain.OrderBook{Bids: bids, Asks: asks}, nil
}

// LastPrice fetches the ticker price from Binance.
func (s *BinanceSource) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := s.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, s.fetchError("/api/v3/ticker/price", err)
	}
	if len(prices) == 0 {
		return decimal.Zero, &clients.FetchError{
			Endpoint: s.client.BaseURL + "/api/v3/ticker/price",
			Reason:   fmt.Sprintf("binance API returned empty prices for %s", symbol),
		}
	}

	price, err := parser.ParseNumber("price", prices[0].Price)
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, &parser.ParseError{Field: "price", Value: prices[0].Price, Err: parser.ErrInvalidLevel}
	}

	return price, nil
}

func (s *BinanceSource) Endpoint() string {
	return s.client.BaseURL
}

func (s *BinanceSource) fetchError(path string, err error) error {
	ferr := &clients.FetchError{Endpoint: s.client.BaseURL + path, Reason: "sdk request", Err: err}
	if apiErr, ok := err.(*common.APIError); ok {
		ferr.Reason = fmt.Sprintf("binance api error %d: %s", apiErr.Code, apiErr.Message)
	}
	return ferr
}
