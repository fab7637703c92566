package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. Records live for the lifetime of the
// value; it is meant for tests and throwaway sessions.
type Memory struct {
	mu     sync.RWMutex
	data   []TradeRecord
	nextID int64
	now    func() time.Time
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{nextID: 1, now: Clock(opts...)}
}

func (m *Memory) Insert(_ context.Context, e Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, storageErr("insert trade record", errClosed)
	}

	rec := newRecord(m.nextID, m.now(), e)
	m.data = append(m.data, rec)
	m.nextID++
	return rec.ID, nil
}

func (m *Memory) ScanAll(_ context.Context) ([]TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, storageErr("scan trade records", errClosed)
	}
	return m.sorted(func(TradeRecord) bool { return true }), nil
}

func (m *Memory) Get(_ context.Context, id int64) (TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return TradeRecord{}, storageErr("get trade record", errClosed)
	}
	for _, r := range m.data {
		if r.ID == id {
			return r, nil
		}
	}
	return TradeRecord{}, fmt.Errorf("trade record %d: %w", id, ErrNotFound)
}

func (m *Memory) ListBetween(_ context.Context, start, end time.Time) ([]TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, storageErr("list trade records", errClosed)
	}
	return m.sorted(func(r TradeRecord) bool {
		return !r.Timestamp.Before(start) && r.Timestamp.Before(end)
	}), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// sorted returns copies of the matching records ordered by timestamp,
// ties by id. Callers hold the lock.
func (m *Memory) sorted(keep func(TradeRecord) bool) []TradeRecord {
	var out []TradeRecord
	for _, r := range m.data {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

var (
	_ Store   = (*Memory)(nil)
	_ Querier = (*Memory)(nil)
)
