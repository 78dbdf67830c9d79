package internal

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/depthwatch/config"
	"github.com/vadiminshakov/depthwatch/internal/clients"
	"github.com/vadiminshakov/depthwatch/internal/domain"
	"github.com/vadiminshakov/depthwatch/internal/services/marketdata"
	"github.com/vadiminshakov/depthwatch/internal/services/parser"
	"github.com/vadiminshakov/depthwatch/internal/services/sink"
)

type snapshotRenderer interface {
	Render(s domain.MarketSnapshot) string
}

type snapshotPublisher interface {
	Publish(s domain.MarketSnapshot, rendered string)
}

// Stats counts loop outcomes since Run started.
type Stats struct {
	Cycles   uint64
	Failures uint64
	Rendered uint64
}

// Watcher polls one symbol's order book and writes every snapshot to a sink.
type Watcher struct {
	Config config.Config

	source    marketdata.Source
	renderer  snapshotRenderer
	sink      sink.Sink
	publisher snapshotPublisher
	clock     Clock
	newID     func() string
	logger    *zap.Logger

	cycles   atomic.Uint64
	failures atomic.Uint64
	rendered atomic.Uint64
}

type WatcherOption func(*Watcher)

// WithClock replaces the wall clock, used by tests to drive the sleep.
func WithClock(c Clock) WatcherOption {
	return func(w *Watcher) {
		w.clock = c
	}
}

// WithPublisher also hands every rendered snapshot to p.
func WithPublisher(p snapshotPublisher) WatcherOption {
	return func(w *Watcher) {
		w.publisher = p
	}
}

// WithIDGenerator overrides the uuid generator for snapshot ids.
func WithIDGenerator(fn func() string) WatcherOption {
	return func(w *Watcher) {
		w.newID = fn
	}
}

// NewWatcher creates a poll loop instance.
func NewWatcher(conf config.Config, source marketdata.Source, renderer snapshotRenderer, out sink.Sink, logger *zap.Logger, opts ...WatcherOption) (*Watcher, error) {
	if source == nil {
		return nil, errors.New("market data source is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if out == nil {
		return nil, errors.New("sink is required")
	}
	if conf.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", conf.PollInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		Config:   conf,
		source:   source,
		renderer: renderer,
		sink:     out,
		clock:    realClock{},
		newID:    uuid.NewString,
		logger:   logger.With(zap.String("symbol", conf.Symbol)),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Stats returns a copy of the loop counters.
func (w *Watcher) Stats() Stats {
	return Stats{
		Cycles:   w.cycles.Load(),
		Failures: w.failures.Load(),
		Rendered: w.rendered.Load(),
	}
}

// Close closes the sink.
func (w *Watcher) Close() error {
	return w.sink.Close()
}

// Run executes cycles until ctx is cancelled. A failed cycle is logged and
// the loop sleeps the regular interval before the next one.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Starting order book watcher",
		zap.String("endpoint", w.source.Endpoint()),
		zap.Int("depth_limit", w.Config.DepthLimit),
		zap.Duration("poll_interval", w.Config.PollInterval))

	for {
		cycleID := w.newID()
		if err := w.cycle(ctx, cycleID); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Context done, stopping watcher run loop.", zap.String("cycle_id", cycleID))
				return ctx.Err()
			}
			w.failures.Add(1)
			w.logFailure(cycleID, err)
		}

		select {
		case <-ctx.Done():
			stats := w.Stats()
			w.logger.Info("Context done, stopping watcher run loop.",
				zap.Uint64("cycles", stats.Cycles),
				zap.Uint64("failures", stats.Failures),
				zap.Uint64("rendered", stats.Rendered))
			return ctx.Err()
		case <-w.clock.After(w.Config.PollInterval):
		}
	}
}

func (w *Watcher) cycle(ctx context.Context, cycleID string) error {
	w.cycles.Add(1)
	w.logger.Debug("Watcher tick", zap.String("cycle_id", cycleID))

	book, err := w.source.Depth(ctx, w.Config.Symbol, w.Config.DepthLimit)
	if err != nil {
		return errors.Wrap(err, "fetch depth")
	}
	receivedAt := w.clock.Now()

	var lastPrice *decimal.Decimal
	if w.Config.FetchPrice {
		price, err := w.source.LastPrice(ctx, w.Config.Symbol)
		if err != nil {
			return errors.Wrap(err, "fetch last price")
		}
		lastPrice = &price
	}

	snapshot := domain.MarketSnapshot{
		ID:        cycleID,
		Symbol:    w.Config.Symbol,
		Timestamp: receivedAt,
		Book:      book,
		LastPrice: lastPrice,
	}

	if err := book.CheckOrdering(); err != nil {
		w.logger.Warn("Order book levels out of order", zap.String("cycle_id", cycleID), zap.Error(err))
	}

	block := w.renderer.Render(snapshot)
	if err := w.sink.Write(block); err != nil {
		return err
	}
	w.rendered.Add(1)

	if w.publisher != nil {
		w.publisher.Publish(snapshot, block)
	}

	w.logger.Debug("Snapshot written",
		zap.String("cycle_id", cycleID),
		zap.Int("bids", len(book.Bids)),
		zap.Int("asks", len(book.Asks)),
		zap.Duration("latency", w.clock.Now().Sub(receivedAt)))

	return nil
}

func (w *Watcher) logFailure(cycleID string, err error) {
	fields := []zap.Field{
		zap.String("endpoint", w.source.Endpoint()),
		zap.String("cycle_id", cycleID),
		zap.Error(err),
	}

	var fetchErr *clients.FetchError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &fetchErr):
		fields = append(fields, zap.String("kind", "fetch"), zap.Int("status", fetchErr.StatusCode))
		w.logger.Error("Market data fetch failed", fields...)
	case errors.As(err, &parseErr):
		fields = append(fields, zap.String("kind", "parse"), zap.String("field", parseErr.Field))
		w.logger.Error("Market data payload rejected", fields...)
	default:
		fields = append(fields, zap.String("kind", "sink"))
		w.logger.Error("Snapshot write failed", fields...)
	}
}

