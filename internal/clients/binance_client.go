package clients

import (
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient builds a public-data Binance client. baseURL overrides the SDK
// default host and may carry the /api/v3 suffix used by the raw HTTP client.
// A zero timeout keeps the SDK's http.Client.
func NewBinanceClient(apiKey, baseURL string, timeout time.Duration) *binance.Client {
	client := binance.NewClient(apiKey, "")
	if baseURL != "" {
		client.BaseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/api/v3")
	}
	if timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: timeout}
	}
	return client
}
