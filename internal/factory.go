package internal

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vadiminshakov/depthwatch/config"
	"github.com/vadiminshakov/depthwatch/internal/clients"
	"github.com/vadiminshakov/depthwatch/internal/services/marketdata"
	"github.com/vadiminshakov/depthwatch/internal/services/render"
	"github.com/vadiminshakov/depthwatch/internal/services/sink"
)

// newSource dispatches to the market data implementation selected by conf.Source.
func newSource(conf config.Config) (marketdata.Source, error) {
	switch conf.Source {
	case config.SourceHTTP, "":
		client := clients.NewMarketDataClient(conf.APIURL,
			clients.WithTimeout(conf.Timeout),
			clients.WithAPIKey(conf.APIKey))
		return marketdata.NewHTTPSource(client, conf.APIURL), nil
	case config.SourceBinance:
		return marketdata.NewBinanceSource(clients.NewBinanceClient(conf.APIKey, conf.APIURL, conf.Timeout)), nil
	default:
		return nil, errors.Errorf("unsupported source: %s", conf.Source)
	}
}

// newSink opens the sinks selected by conf.Output. stdout receives console output.
func newSink(conf config.Config, stdout io.Writer) (sink.Sink, error) {
	var sinks []sink.Sink
	if conf.WritesConsole() {
		sinks = append(sinks, sink.NewStyledConsole(stdout))
	}
	if conf.WritesFile() {
		f, err := sink.OpenFile(conf.OutputFile)
		if err != nil {
			var closeErr error
			for _, s := range sinks {
				closeErr = multierr.Append(closeErr, s.Close())
			}
			return nil, multierr.Append(err, closeErr)
		}
		sinks = append(sinks, f)
	}

	switch len(sinks) {
	case 0:
		return nil, errors.Errorf("unsupported output: %s", conf.Output)
	case 1:
		return sinks[0], nil
	default:
		return sink.NewMulti(sinks...), nil
	}
}

// NewWatcherFromConfig wires source, renderer and sinks for conf.
func NewWatcherFromConfig(conf config.Config, stdout io.Writer, logger *zap.Logger, opts ...WatcherOption) (*Watcher, error) {
	source, err := newSource(conf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create market data source")
	}

	out, err := newSink(conf, stdout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open output")
	}

	w, err := NewWatcher(conf, source, render.New(), out, logger, opts...)
	if err != nil {
		return nil, multierr.Append(err, out.Close())
	}

	return w, nil
}
