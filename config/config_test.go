package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func mapEnv(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YamlWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Settings.yaml", `
api_url: https://api.binance.com/api/v3
symbol: BNB_USDC
`)

	conf, err := load(path, "", noEnv)
	require.NoError(t, err)

	assert.Equal(t, "https://api.binance.com/api/v3", conf.APIURL)
	assert.Equal(t, "BNBUSDC", conf.Symbol)
	assert.Equal(t, 10, conf.DepthLimit)
	assert.Equal(t, 10*time.Second, conf.PollInterval)
	assert.Equal(t, 10*time.Second, conf.Timeout)
	assert.Equal(t, SourceHTTP, conf.Source)
	assert.Equal(t, OutputConsole, conf.Output)
	assert.Equal(t, "orderbook.log", conf.OutputFile)
	assert.True(t, conf.FetchPrice)
	assert.True(t, conf.WritesConsole())
	assert.False(t, conf.WritesFile())
	assert.False(t, conf.Development())
}

func TestLoad_FullYaml(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", `
api_key: secret
api_url: https://api.binance.us/api/v3
symbol: btcusdt
depth_limit: 20
poll_interval_seconds: 4
timeout_seconds: 3
environment: development
source: binance
output: both
output_file: out/book.log
fetch_price: false
log_file: logs/app.log
log_level: debug
dashboard_addr: ":8080"
`)

	conf, err := load(path, "", noEnv)
	require.NoError(t, err)

	assert.Equal(t, Config{
		APIKey:        "secret",
		APIURL:        "https://api.binance.us/api/v3",
		Symbol:        "BTCUSDT",
		DepthLimit:    20,
		PollInterval:  4 * time.Second,
		Timeout:       3 * time.Second,
		Environment:   "development",
		Source:        SourceBinance,
		Output:        OutputBoth,
		OutputFile:    "out/book.log",
		FetchPrice:    false,
		LogFile:       "logs/app.log",
		LogLevel:      "debug",
		DashboardAddr: ":8080",
	}, conf)
	assert.True(t, conf.Development())
	assert.True(t, conf.WritesFile())
}

func TestLoad_EnvOverridesFileAndDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", `
api_url: https://file.example/api/v3
symbol: BNBUSDC
poll_interval_seconds: 10
`)
	envFile := writeFile(t, dir, ".env", "APP_SYMBOL=ETHUSDT\nAPP_POLL_INTERVAL_SECONDS=4\nAPP_OUTPUT=file\n")

	conf, err := load(path, envFile, mapEnv(map[string]string{
		"APP_API_URL":     "https://env.example/api/v3",
		"APP_OUTPUT":      "both",
		"APP_FETCH_PRICE": "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/api/v3", conf.APIURL)
	assert.Equal(t, "ETHUSDT", conf.Symbol)
	assert.Equal(t, 4*time.Second, conf.PollInterval)
	assert.Equal(t, OutputBoth, conf.Output)
	assert.False(t, conf.FetchPrice)
}

func TestLoad_EnvOnly(t *testing.T) {
	conf, err := load("", "", mapEnv(map[string]string{
		"APP_API_URL": "https://api.binance.com/api/v3",
		"APP_SYMBOL":  "BNBUSDC",
	}))
	require.NoError(t, err)
	assert.Equal(t, "BNBUSDC", conf.Symbol)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantKey string
	}{
		{name: "missing api_url", yaml: "symbol: BNBUSDC\n", wantKey: "api_url"},
		{name: "bad api_url", yaml: "api_url: ftp://x\nsymbol: BNBUSDC\n", wantKey: "api_url"},
		{name: "missing symbol", yaml: "api_url: https://x\n", wantKey: "symbol"},
		{name: "bad symbol", yaml: "api_url: https://x\nsymbol: BNB-USDC\n", wantKey: "symbol"},
		{name: "underscore only symbol", yaml: "api_url: https://x\nsymbol: _\n", wantKey: "symbol"},
		{name: "zero depth", yaml: "api_url: https://x\nsymbol: A\ndepth_limit: 0\n", wantKey: "depth_limit"},
		{name: "huge depth", yaml: "api_url: https://x\nsymbol: A\ndepth_limit: 6000\n", wantKey: "depth_limit"},
		{name: "zero interval", yaml: "api_url: https://x\nsymbol: A\npoll_interval_seconds: 0\n", wantKey: "poll_interval_seconds"},
		{name: "negative timeout", yaml: "api_url: https://x\nsymbol: A\ntimeout_seconds: -1\n", wantKey: "timeout_seconds"},
		{name: "bad source", yaml: "api_url: https://x\nsymbol: A\nsource: kraken\n", wantKey: "source"},
		{name: "bad output", yaml: "api_url: https://x\nsymbol: A\noutput: printer\n", wantKey: "output"},
		{name: "env not integer", yaml: "api_url: https://x\nsymbol: A\n", env: map[string]string{"APP_DEPTH_LIMIT": "ten"}, wantKey: "depth_limit"},
		{name: "env not bool", yaml: "api_url: https://x\nsymbol: A\n", env: map[string]string{"APP_FETCH_PRICE": "maybe"}, wantKey: "fetch_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "cfg.yaml", tt.yaml)

			_, err := load(path, "", mapEnv(tt.env))
			require.Error(t, err)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "expected *ConfigError, got %v", err)
			assert.Equal(t, tt.wantKey, cerr.Key)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), "", noEnv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.yaml", "api_url: [unterminated\n")
	_, err := load(path, "", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestMarshal_RoundTrip(t *testing.T) {
	depth := 5
	interval := 4
	data, err := Marshal(ConfigTmp{
		APIURL:              "https://api.binance.com/api/v3",
		Symbol:              "BNBUSDC",
		DepthLimit:          &depth,
		PollIntervalSeconds: &interval,
		Output:              OutputFile,
		OutputFile:          "book.log",
	})
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "gen.yaml", string(data))
	conf, err := load(path, "", noEnv)
	require.NoError(t, err)
	assert.Equal(t, 5, conf.DepthLimit)
	assert.Equal(t, 4*time.Second, conf.PollInterval)
	assert.Equal(t, OutputFile, conf.Output)
}
