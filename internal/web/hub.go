package web

import (
	"sync"
	"time"

	"github.com/vadiminshakov/depthwatch/internal/domain"
)

const defaultHubCapacity = 100

// SnapshotView JSON form of a published snapshot.
type SnapshotView struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Timestamp time.Time   `json:"ts"`
	LastPrice string      `json:"last_price,omitempty"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
	Rendered  string      `json:"rendered"`
}

// SnapshotRecord snapshot with its publish index.
type SnapshotRecord struct {
	Index    uint64
	Snapshot SnapshotView
}

// Hub keeps the most recent snapshots in memory for streaming. Nothing is persisted.
type Hub struct {
	mu       sync.RWMutex
	capacity int
	index    uint64
	records  []SnapshotRecord
}

// NewHub creates a hub holding at most capacity snapshots.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = defaultHubCapacity
	}
	return &Hub{capacity: capacity}
}

// Publish stores the snapshot and its rendered text, evicting the oldest when full.
func (h *Hub) Publish(s domain.MarketSnapshot, rendered string) {
	view := SnapshotView{
		ID:        s.ID,
		Symbol:    s.Symbol,
		Timestamp: s.Timestamp,
		Bids:      levels(s.Book.Bids),
		Asks:      levels(s.Book.Asks),
		Rendered:  rendered,
	}
	if s.LastPrice != nil {
		view.LastPrice = s.LastPrice.String()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.index++
	h.records = append(h.records, SnapshotRecord{Index: h.index, Snapshot: view})
	if len(h.records) > h.capacity {
		h.records = append(h.records[:0:0], h.records[len(h.records)-h.capacity:]...)
	}
}

// SnapshotsAfter returns the retained snapshots published after index, oldest first.
func (h *Hub) SnapshotsAfter(index uint64) ([]SnapshotRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.index <= index {
		return nil, nil
	}

	out := make([]SnapshotRecord, 0, len(h.records))
	for _, r := range h.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out, nil
}

// CurrentIndex returns the index of the latest published snapshot.
func (h *Hub) CurrentIndex() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// Len returns the number of retained snapshots.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

func levels(in []domain.PriceLevel) [][2]string {
	out := make([][2]string, len(in))
	for i, l := range in {
		out[i] = [2]string{l.Price.String(), l.Quantity.String()}
	}
	return out
}
