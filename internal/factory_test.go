package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/depthwatch/config"
	"github.com/vadiminshakov/depthwatch/internal/services/marketdata"
	"github.com/vadiminshakov/depthwatch/internal/services/sink"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		expectType  any
		expectedErr string
	}{
		{name: "http", source: config.SourceHTTP, expectType: &marketdata.HTTPSource{}},
		{name: "binance", source: config.SourceBinance, expectType: &marketdata.BinanceSource{}},
		{name: "unsupported", source: "kraken", expectedErr: "unsupported source: kraken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testConfig()
			conf.Source = tt.source

			src, err := newSource(conf)
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expectType, src)
		})
	}
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		output     string
		expectType any
	}{
		{name: "console", output: config.OutputConsole, expectType: &sink.Console{}},
		{name: "file", output: config.OutputFile, expectType: &sink.File{}},
		{name: "both", output: config.OutputBoth, expectType: &sink.Multi{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testConfig()
			conf.Output = tt.output
			conf.OutputFile = filepath.Join(dir, tt.name, "orderbook.log")

			var stdout bytes.Buffer
			out, err := newSink(conf, &stdout)
			require.NoError(t, err)
			assert.IsType(t, tt.expectType, out)

			require.NoError(t, out.Write("block\n"))
			require.NoError(t, out.Close())

			if conf.WritesConsole() {
				assert.Equal(t, "block\n", stdout.String())
			}
			if conf.WritesFile() {
				data, err := os.ReadFile(conf.OutputFile)
				require.NoError(t, err)
				assert.Equal(t, "block\n", string(data))
			}
		})
	}
}

func TestNewSink_Unsupported(t *testing.T) {
	conf := testConfig()
	conf.Output = "syslog"

	_, err := newSink(conf, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output: syslog")
}

func TestNewWatcherFromConfig_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderbook.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o644))

	conf := testConfig()
	conf.Output = config.OutputFile
	conf.OutputFile = path

	w, err := NewWatcherFromConfig(conf, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.sink.Write("next\n"))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\nnext\n", string(data))
}
