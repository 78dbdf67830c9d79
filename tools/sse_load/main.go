// Command sse_load opens many concurrent connections to the depthwatch dashboard
// stream and reports how many depth events arrive.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	var (
		targetURL    string
		connections  int
		testDuration time.Duration
		rampUp       time.Duration
		headerAccept string
	)

	flag.StringVar(&targetURL, "url", "http://localhost:8080/depth/stream", "SSE endpoint URL")
	flag.IntVar(&connections, "conns", 100, "number of concurrent connections to open")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread connection starts across this window)")
	flag.StringVar(&headerAccept, "accept", "text/event-stream", "value for Accept header")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	if connections <= 0 {
		logger.Fatal("invalid conns", zap.Int("conns", connections))
	}
	if rampUp == 0 && connections > 100 {
		// 1 second per 500 connections
		rampUp = max(time.Duration(connections/500)*time.Second, time.Second)
		logger.Info("using default ramp-up", zap.Duration("ramp", rampUp))
	}

	logger.Info("starting SSE load",
		zap.String("url", targetURL),
		zap.Int("conns", connections),
		zap.Duration("duration", testDuration),
		zap.Duration("ramp", rampUp))

	transport := &http.Transport{
		MaxConnsPerHost:     connections + 100,
		MaxIdleConns:        connections + 100,
		MaxIdleConnsPerHost: connections + 100,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	client := &http.Client{Transport: transport} // no timeout, streaming

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, testDuration)
		defer cancel()
	}

	var (
		c  counters
		wg sync.WaitGroup
	)
	start := time.Now()

	var interval time.Duration
	if rampUp > 0 {
		interval = rampUp / time.Duration(connections)
	}

	for i := 0; i < connections && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(ctx, client, targetURL, headerAccept, &c)
		}()
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("status",
					zap.Int64("connected", c.connected.Load()),
					zap.Int64("connect_errs", c.connectErrs.Load()),
					zap.Int64("stream_errs", c.streamErrs.Load()),
					zap.Int64("events", c.events.Load()),
					zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))
			}
		}
	}()

	wg.Wait()

	elapsed := max(time.Since(start), time.Millisecond)
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d events=%d heartbeats=%d elapsed=%s events/s=%.2f\n",
		c.connected.Load(),
		c.connectErrs.Load(),
		c.streamErrs.Load(),
		c.events.Load(),
		c.heartbeats.Load(),
		elapsed.Truncate(time.Millisecond),
		float64(c.events.Load())/elapsed.Seconds(),
	)
}
