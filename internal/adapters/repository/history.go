package repository

import (
	"sync"
	"time"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/metrics"
)

// History is a fixed-capacity FIFO log of emitted city states. When full,
// each append evicts the oldest record; evicted records are unrecoverable.
type History struct {
	mu      sync.RWMutex
	records []model.HistoryRecord
	head    int
	size    int
}

// NewHistory creates a history log with the given capacity.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	metrics.UpdateHistoryCapacity(capacity)
	metrics.UpdateHistorySize(0)

	return &History{records: make([]model.HistoryRecord, capacity)}, nil
}

// Append adds a record, evicting the oldest when at capacity.
func (h *History) Append(record model.HistoryRecord) {
	h.mu.Lock()
	if h.size == len(h.records) {
		// Overwrite the oldest slot and advance the head.
		h.records[h.head] = record
		h.head = (h.head + 1) % len(h.records)
		metrics.RecordHistoryEviction()
	} else {
		h.records[(h.head+h.size)%len(h.records)] = record
		h.size++
	}
	size := h.size
	h.mu.Unlock()

	metrics.RecordHistoryAppend()
	metrics.UpdateHistorySize(size)
}

// Query returns retained records oldest-first. An empty cityID matches all
// cities; a zero since matches all times, otherwise only records generated
// at or after since are returned.
func (h *History) Query(cityID string, since time.Time) []model.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]model.HistoryRecord, 0, h.size)
	for i := 0; i < h.size; i++ {
		record := h.records[(h.head+i)%len(h.records)]
		if cityID != "" && record.CityID != cityID {
			continue
		}
		if !since.IsZero() && record.GeneratedAt.Before(since) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Recent returns up to limit retained records newest-first. An empty cityID
// matches all cities; limit <= 0 means no limit.
func (h *History) Recent(cityID string, limit int) []model.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]model.HistoryRecord, 0, h.size)
	for i := h.size - 1; i >= 0; i-- {
		record := h.records[(h.head+i)%len(h.records)]
		if cityID != "" && record.CityID != cityID {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Capacity returns the fixed capacity.
func (h *History) Capacity() int {
	return len(h.records)
}
