// Package journal records delivered events for auditing and debugging.
//
// A journal is an ordinary subscriber: it sees an event only when the bus
// delivers it, and stores a JSON snapshot of the event's exported fields.
package journal

import (
	"context"
	"errors"
	"time"
)

// Entry is one recorded event.
type Entry struct {
	ID         string
	Sequence   int64
	EventType  string
	Sender     string
	Payload    []byte
	RecordedAt time.Time
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores an entry and returns it with Sequence assigned, plus
	// a random ID and the current time when those are empty.
	// Sequences increase strictly in append order.
	Append(ctx context.Context, e Entry) (Entry, error)

	// List returns entries ordered by sequence. An empty eventType matches
	// all types; limit <= 0 means no limit.
	List(ctx context.Context, eventType string, limit int) ([]Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrDuplicateID indicates an entry with the same ID was already appended.
	ErrDuplicateID = errors.New("duplicate journal entry id")
)
