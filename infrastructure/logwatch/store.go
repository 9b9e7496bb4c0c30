package logwatch

import (
	"context"
	"sync"
	"time"

	"flowcanvas/application/ports"
)

// DefaultStoreLimit caps the retained log entry window
const DefaultStoreLimit = 1000

// Store is the bounded in-memory tail of the watched log stream. It
// implements the LogSource interface. Entries past the cap fall off oldest
// first; sequence numbers stay stable across eviction so a replay request
// can still name an entry unambiguously.
type Store struct {
	mu          sync.RWMutex
	entries     []ports.LogEntry
	limit       int
	seq         uint64
	subscribers map[uint64]func(ports.LogEntry)
	nextSubID   uint64
}

// NewStore creates a new Store retaining up to limit entries. A
// non-positive limit falls back to the default.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &Store{
		entries:     make([]ports.LogEntry, 0, limit),
		limit:       limit,
		subscribers: make(map[uint64]func(ports.LogEntry)),
	}
}

// Append assigns the entry its sequence number, stamps missing timestamps
// with arrival time, stores it and notifies subscribers. The stored entry
// is returned.
func (s *Store) Append(entry ports.LogEntry) ports.LogEntry {
	s.mu.Lock()

	s.seq++
	entry.Seq = s.seq
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = s.entries[over:]
	}

	handlers := make([]func(ports.LogEntry), 0, len(s.subscribers))
	for _, handler := range s.subscribers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	// Entries arrive from one watcher goroutine, so notification order
	// follows append order even though the lock is released here.
	for _, handler := range handlers {
		handler(entry)
	}

	return entry
}

// Recent returns up to limit retained entries, oldest first. A
// non-positive limit returns the whole retained window.
func (s *Store) Recent(ctx context.Context, limit int) ([]ports.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.entries
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}

	result := make([]ports.LogEntry, len(window))
	copy(result, window)
	return result, nil
}

// Subscribe registers a callback for new entries and returns an
// unsubscribe function
func (s *Store) Subscribe(handler func(ports.LogEntry)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = handler

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}, nil
}

// Entry retrieves one retained entry by its sequence number
func (s *Store) Entry(seq uint64) (ports.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.Seq == seq {
			return entry, true
		}
	}
	return ports.LogEntry{}, false
}

// Len returns the number of retained entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops all retained entries. Sequence numbering continues from
// where it was.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}
