package journal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	ids     map[string]struct{}
	nextSeq int64
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, dup := m.ids[e.ID]; dup {
		return Entry{}, ErrDuplicateID
	}
	m.ids[e.ID] = struct{}{}

	m.nextSeq++
	e.Sequence = m.nextSeq
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	// Copy payload to avoid retaining the caller's slice
	e.Payload = append([]byte(nil), e.Payload...)

	m.entries = append(m.entries, e)
	return e, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, eventType string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Entry
	for _, e := range m.entries {
		if eventType != "" && e.EventType != eventType {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.entries), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
