package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	depthPath       = "/depth"
	tickerPricePath = "/ticker/price"
	apiKeyHeader    = "X-MBX-APIKEY"
	maxErrorBody    = 256
)

// FetchError describes a failed market-data request.
type FetchError struct {
	// Endpoint full request URL.
	Endpoint string
	// StatusCode HTTP status, 0 when no response was received.
	StatusCode int
	// Reason short human readable cause.
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.Endpoint, e.Reason, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Endpoint, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MarketDataClient issues plain GET requests against a Binance-style REST API
// and returns the raw JSON body. It keeps no state between calls and never retries.
type MarketDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a MarketDataClient.
type ClientOption func(*MarketDataClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *MarketDataClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *MarketDataClient) {
		c.httpClient = hc
	}
}

// WithAPIKey sends the key with every request. Public endpoints do not need it.
func WithAPIKey(key string) ClientOption {
	return func(c *MarketDataClient) {
		c.apiKey = key
	}
}

// NewMarketDataClient creates a client for the given base URL, e.g. https://api.binance.com/api/v3.
func NewMarketDataClient(baseURL string, opts ...ClientOption) *MarketDataClient {
	c := &MarketDataClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DepthURL returns the depth endpoint for symbol and limit.
func (c *MarketDataClient) DepthURL(symbol string, limit int) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("limit", strconv.Itoa(limit))
	return c.baseURL + depthPath + "?" + q.Encode()
}

// PriceURL returns the ticker price endpoint for symbol.
func (c *MarketDataClient) PriceURL(symbol string) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	return c.baseURL + tickerPricePath + "?" + q.Encode()
}

// FetchDepth returns the raw depth JSON for symbol.
func (c *MarketDataClient) FetchDepth(ctx context.Context, symbol string, limit int) ([]byte, error) {
	return c.get(ctx, c.DepthURL(symbol, limit))
}

// FetchPrice returns the raw ticker price JSON for symbol.
func (c *MarketDataClient) FetchPrice(ctx context.Context, symbol string) ([]byte, error) {
	return c.get(ctx, c.PriceURL(symbol))
}

func (c *MarketDataClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Reason: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Reason: "do request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := http.StatusText(resp.StatusCode)
		if snippet := strings.TrimSpace(string(body)); snippet != "" {
			snippet = truncate(snippet, maxErrorBody)
			reason = reason + ": " + snippet
		}
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: reason}
	}

	if len(body) == 0 {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: "empty body", Err: errors.New("no payload")}
	}

	return body, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
