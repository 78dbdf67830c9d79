package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const snapshotPollInterval = 2 * time.Second

type snapshotReader interface {
	SnapshotsAfter(index uint64) ([]SnapshotRecord, error)
	CurrentIndex() uint64
}

// LoopStats poll loop counters reported by /healthz.
type LoopStats struct {
	Cycles   uint64 `json:"cycles"`
	Failures uint64 `json:"failures"`
	Rendered uint64 `json:"rendered"`
}

// Server exposes an HTML page and an SSE stream of recent snapshots.
type Server struct {
	Addr   string
	Store  snapshotReader
	stats  func() LoopStats
	logger *zap.Logger
}

type ServerOption func(*Server)

// WithStats adds the poll loop counters returned by fn to /healthz.
func WithStats(fn func() LoopStats) ServerOption {
	return func(s *Server) {
		s.stats = fn
	}
}

// NewServer creates a new web server instance.
func NewServer(addr string, store snapshotReader, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{Addr: addr, Store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/depth/stream", s.handleDepthStream)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{
		"status":     "ok",
		"last_index": s.Store.CurrentIndex(),
	}
	if s.stats != nil {
		body["loop"] = s.stats()
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleDepthStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendSnapshots := func() error {
		records, err := s.Store.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: depth\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			lastIndex = record.Index
		}
		flusher.Flush()
		return nil
	}

	if err := sendSnapshots(); err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		s.logger.Error("depth stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendSnapshots(); err != nil {
				s.logger.Warn("depth stream poll", zap.Error(err))
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>depthwatch</title>
  <style>
    body { margin:0; padding:2rem; font-family:'Space Mono','JetBrains Mono',monospace; background:#fff; color:#111; }
    #status { font-size:.7rem; text-transform:uppercase; letter-spacing:.1em; border:2px solid #111; padding:.4rem .9rem; display:inline-block; }
    pre { border:3px solid #111; padding:1rem; box-shadow:8px 8px 0 rgba(0,0,0,.15); background:#f6f6f6; }
  </style>
</head>
<body>
  <div id="status">Connecting…</div>
  <pre id="book">Waiting for snapshots…</pre>
<script>
const statusEl = document.getElementById('status');
const bookEl = document.getElementById('book');

function connectSSE(){
  const source = new EventSource('/depth/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('depth', (event) => {
    try{
      const payload = JSON.parse(event.data);
      bookEl.textContent = payload.rendered;
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
