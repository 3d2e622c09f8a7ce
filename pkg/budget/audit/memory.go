package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultMaxEntries bounds the in-memory backend; the oldest records are
// evicted first.
const defaultMaxEntries = 10000

// MemoryBackend keeps refusal records in memory. It is the default backend:
// fast, bounded, and gone on restart, which matches the rest of this
// subsystem's ephemeral state.
type MemoryBackend struct {
	mu         sync.RWMutex
	records    []*Record
	maxEntries int
	closed     bool
}

// NewMemoryBackend creates an in-memory audit backend with the default
// entry bound.
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithSize(defaultMaxEntries)
}

// NewMemoryBackendWithSize creates an in-memory backend bounded at
// maxEntries records.
func NewMemoryBackendWithSize(maxEntries int) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryBackend{
		records:    make([]*Record, 0, 64),
		maxEntries: maxEntries,
	}
}

// Record stores one refusal record, evicting the oldest when full.
func (m *MemoryBackend) Record(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Time.IsZero() {
		stored.Time = time.Now()
	}

	m.records = append(m.records, &stored)
	if len(m.records) > m.maxEntries {
		m.records = m.records[len(m.records)-m.maxEntries:]
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryBackend) Recent(ctx context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}

	out := make([]*Record, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := *m.records[i]
		out = append(out, &rec)
	}
	return out, nil
}

// Prune removes records older than the given time.
func (m *MemoryBackend) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	kept := m.records[:0]
	deleted := 0
	for _, rec := range m.records {
		if rec.Time.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

// Close marks the backend closed.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
