// Command depthwatch polls an exchange order book and prints every snapshot
// as a two column BIDS/ASKS table.
//
// Usage:
//
//	depthwatch --config Settings.yaml
//	depthwatch --setup (interactive wizard, writes the config file first)
//
// Every key can be overridden through the environment, e.g. APP_SYMBOL=BNBUSDC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/depthwatch/config"
	"github.com/vadiminshakov/depthwatch/internal"
	"github.com/vadiminshakov/depthwatch/internal/logging"
	"github.com/vadiminshakov/depthwatch/internal/setup"
	"github.com/vadiminshakov/depthwatch/internal/web"
)

const dashboardCapacity = 100

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML config file (default Settings.yaml if present)")
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")
	flag.Parse()

	if *runSetup {
		path := *configPath
		if path == "" {
			path = config.DefaultPath
		}
		if err := setup.RunTUI(path); err != nil {
			fmt.Fprintf(os.Stderr, "setup: %v\n", err)
			return 1
		}
		*configPath = path
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Config{
		Level:       conf.LogLevel,
		Development: conf.Development(),
		File:        conf.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, conf, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("depthwatch stopped", zap.Error(err))
		return 1
	}

	logger.Info("depthwatch stopped")
	return 0
}

func serve(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	var opts []internal.WatcherOption
	var hub *web.Hub
	if conf.DashboardAddr != "" {
		hub = web.NewHub(dashboardCapacity)
		opts = append(opts, internal.WithPublisher(hub))
	}

	watcher, err := internal.NewWatcherFromConfig(conf, os.Stdout, logger, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error("failed to close output", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	if hub != nil {
		server := web.NewServer(conf.DashboardAddr, hub, logger.Named("web"),
			web.WithStats(func() web.LoopStats { return web.LoopStats(watcher.Stats()) }))
		g.Go(func() error {
			return server.Start(ctx)
		})
	}

	return g.Wait()
}
