// Package parser turns raw market-data JSON into domain types.
// Every lookup is checked; malformed input yields a *ParseError, never a panic.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/depthwatch/internal/domain"
)

const (
	rootField  = "$"
	priceField = "price"

	// maxExponent bounds the decimal exponent of accepted numbers. Feeds send plain
	// decimals; "1e50000000" would expand to a huge string when rendered.
	maxExponent = 64
)

// ParseOrderBook parses a depth response of the form
// {"bids": [["price","qty"], ...], "asks": [["price","qty"], ...]}.
// Levels keep the order of the source arrays.
func ParseOrderBook(raw []byte) (domain.OrderBook, error) {
	fields, err := object(raw)
	if err != nil {
		return domain.OrderBook{}, err
	}

	bids, err := parseSide(fields, domain.SideBid)
	if err != nil {
		return domain.OrderBook{}, err
	}

	asks, err := parseSide(fields, domain.SideAsk)
	if err != nil {
		return domain.OrderBook{}, err
	}

	return domain.OrderBook{Bids: bids, Asks: asks}, nil
}

// ParsePrice parses a ticker response of the form {"symbol": "...", "price": "612.3"}.
func ParsePrice(raw []byte) (decimal.Decimal, error) {
	fields, err := object(raw)
	if err != nil {
		return decimal.Zero, err
	}

	value, ok := fields[priceField]
	if !ok || isNull(value) {
		return decimal.Zero, newParseError(priceField, nil, ErrMissingField)
	}

	price, err := number(priceField, value)
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, newParseError(priceField, value, ErrInvalidLevel)
	}

	return price, nil
}

// ParseLevels converts already-split [price, quantity] string pairs, as returned by
// exchange SDKs, applying the same validation as ParseOrderBook.
func ParseLevels(side domain.Side, pairs [][2]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(pairs))
	for i, pair := range pairs {
		path := fmt.Sprintf("%s[%d]", side, i)

		price, err := ParseNumber(path+"[0]", pair[0])
		if err != nil {
			return nil, err
		}
		quantity, err := ParseNumber(path+"[1]", pair[1])
		if err != nil {
			return nil, err
		}

		level, err := domain.NewPriceLevel(price, quantity)
		if err != nil {
			return nil, newParseError(path, []byte(pair[0]+","+pair[1]), ErrInvalidLevel)
		}
		levels = append(levels, level)
	}

	return levels, nil
}

func object(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, newParseError(rootField, raw, ErrMalformed)
	}
	if fields == nil {
		return nil, newParseError(rootField, raw, ErrMalformed)
	}

	return fields, nil
}

func parseSide(fields map[string]json.RawMessage, side domain.Side) ([]domain.PriceLevel, error) {
	value, ok := fields[side.String()]
	if !ok || isNull(value) {
		return nil, newParseError(side.String(), nil, ErrMissingField)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, newParseError(side.String(), value, ErrNotArray)
	}

	pairs := make([][2]string, 0, len(entries))
	for i, entry := range entries {
		path := fmt.Sprintf("%s[%d]", side, i)

		var elems []json.RawMessage
		if err := json.Unmarshal(entry, &elems); err != nil || elems == nil {
			return nil, newParseError(path, entry, ErrNotArray)
		}
		if len(elems) != 2 {
			return nil, newParseError(path, entry, ErrArity)
		}

		var pair [2]string
		for j, elem := range elems {
			if err := json.Unmarshal(elem, &pair[j]); err != nil || isNull(elem) {
				return nil, newParseError(fmt.Sprintf("%s[%d]", path, j), elem, ErrNotString)
			}
		}
		pairs = append(pairs, pair)
	}

	return ParseLevels(side, pairs)
}

func number(field string, value json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil || isNull(value) {
		return decimal.Zero, newParseError(field, value, ErrNotString)
	}

	return ParseNumber(field, s)
}

// ParseNumber parses a decimal string reported as field on failure. Values whose
// exponent is outside ±maxExponent are rejected with ErrNotNumber.
func ParseNumber(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, newParseError(field, []byte(s), ErrNotNumber)
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, newParseError(field, []byte(s), ErrNotNumber)
	}

	return d, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
