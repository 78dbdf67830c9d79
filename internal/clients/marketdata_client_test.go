package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketDataClient_FetchDepth(t *testing.T) {
	var gotPath, gotSymbol, gotLimit, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSymbol = r.URL.Query().Get("symbol")
		gotLimit = r.URL.Query().Get("limit")
		gotKey = r.Header.Get(apiKeyHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bids":[["10.5","2"]],"asks":[]}`))
	}))
	defer server.Close()

	client := NewMarketDataClient(server.URL+"/api/v3/", WithAPIKey("key"))
	body, err := client.FetchDepth(context.Background(), "BNBUSDC", 5)
	require.NoError(t, err)

	assert.JSONEq(t, `{"bids":[["10.5","2"]],"asks":[]}`, string(body))
	assert.Equal(t, "/api/v3/depth", gotPath)
	assert.Equal(t, "BNBUSDC", gotSymbol)
	assert.Equal(t, "5", gotLimit)
	assert.Equal(t, "key", gotKey)
}

func TestMarketDataClient_FetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ticker/price", r.URL.Path)
		assert.Empty(t, r.Header.Get(apiKeyHeader))
		_, _ = w.Write([]byte(`{"symbol":"BNBUSDC","price":"612.3"}`))
	}))
	defer server.Close()

	body, err := NewMarketDataClient(server.URL).FetchPrice(context.Background(), "BNBUSDC")
	require.NoError(t, err)
	assert.Contains(t, string(body), "612.3")
}

func TestMarketDataClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantReason string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
			wantReason: "Internal Server Error",
		},
		{
			name: "bad request keeps body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			},
			wantStatus: http.StatusBadRequest,
			wantReason: "Invalid symbol.",
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusOK,
			wantReason: "empty body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewMarketDataClient(server.URL).FetchDepth(context.Background(), "BNBUSDC", 5)
			require.Error(t, err)

			var ferr *FetchError
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, tt.wantStatus, ferr.StatusCode)
			assert.Contains(t, ferr.Reason, tt.wantReason)
			assert.Contains(t, ferr.Endpoint, "/depth?")
		})
	}
}

func TestMarketDataClient_ErrorBodyCutAtRuneBoundary(t *testing.T) {
	body := strings.Repeat("x", maxErrorBody-1) + "ошибка"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	_, err := NewMarketDataClient(server.URL).FetchDepth(context.Background(), "BNBUSDC", 5)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.True(t, utf8.ValidString(ferr.Reason))
	assert.Equal(t, "Bad Gateway: "+strings.Repeat("x", maxErrorBody-1), ferr.Reason)
}

func TestMarketDataClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewMarketDataClient(server.URL, WithTimeout(50*time.Millisecond))
	_, err := client.FetchPrice(context.Background(), "BNBUSDC")

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 0, ferr.StatusCode)
	assert.Equal(t, "do request", ferr.Reason)
}

func TestMarketDataClient_URLs(t *testing.T) {
	c := NewMarketDataClient("https://api.binance.com/api/v3/")
	assert.Equal(t, "https://api.binance.com/api/v3/depth?limit=10&symbol=BNBUSDC", c.DepthURL("BNBUSDC", 10))
	assert.Equal(t, "https://api.binance.com/api/v3/ticker/price?symbol=BNBUSDC", c.PriceURL("BNBUSDC"))
}

func TestNewBinanceClient_BaseURL(t *testing.T) {
	assert.Equal(t, "https://api.binance.us", NewBinanceClient("", "https://api.binance.us/api/v3", 0).BaseURL)
	assert.Equal(t, "https://api.binance.com", NewBinanceClient("", "https://api.binance.com/", 0).BaseURL)
}
