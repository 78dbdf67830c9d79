package main

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"sync/atomic"
)

// counters aggregated over all stream connections.
type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	events      atomic.Int64
	heartbeats  atomic.Int64
}

// consume opens one SSE connection and counts depth events until ctx is done or the stream breaks.
func consume(ctx context.Context, client *http.Client, targetURL, accept string, c *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.connectErrs.Add(1)
		return
	}

	c.connected.Add(1)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		switch classify(scanner.Text()) {
		case lineEvent:
			c.events.Add(1)
		case lineHeartbeat:
			c.heartbeats.Add(1)
		}
	}
	if ctx.Err() == nil {
		c.streamErrs.Add(1)
	}
}

type lineKind int

const (
	lineOther lineKind = iota
	lineEvent
	lineHeartbeat
)

func classify(line string) lineKind {
	line = strings.TrimRight(line, "\r")
	switch {
	case strings.HasPrefix(line, ":"):
		return lineHeartbeat
	case line == "event: depth":
		return lineEvent
	default:
		return lineOther
	}
}
