// Package eventstore owns the bounded, insertion-ordered telemetry log and
// the in-flight span timers. It is the single ingestion point for every
// producer; all operations are safe to call from any goroutine.
package eventstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/calvingit/performance-tracker/internal/event"
)

const DefaultMaxRecords = 1000

type (
	// SpanHandle identifies one in-flight timed operation. It is consumed
	// exactly once by EndSpan.
	SpanHandle struct {
		ID        uuid.UUID
		StartedAt time.Time
	}

	Store struct {
		mu         sync.Mutex
		enabled    bool
		maxRecords int
		records    []event.Record
		pending    map[string]SpanHandle
	}
)

func New(maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Store{
		enabled:    true,
		maxRecords: maxRecords,
		pending:    make(map[string]SpanHandle),
	}
}

// SetEnabled gates all writes. Disabling does not flush in-flight span
// timers; their eventual EndSpan completes the measurement and drops the
// record.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetMaxRecords adjusts the capacity. Lowering it below the current length
// evicts from the front; raising it never back-fills evicted records.
func (s *Store) SetMaxRecords(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxRecords = n
	s.evictLocked()
}

func (s *Store) MaxRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxRecords
}

// Add appends one record, evicting the oldest while over capacity. It is a
// silent no-op while the store is disabled.
func (s *Store) Add(r event.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.records = append(s.records, r)
	s.evictLocked()
}

func (s *Store) evictLocked() {
	if overflow := len(s.records) - s.maxRecords; overflow > 0 {
		s.records = append(s.records[:0], s.records[overflow:]...)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Snapshot returns a copy of the log in insertion order.
func (s *Store) Snapshot() []event.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) ByKind(kind event.Kind) []event.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Record
	for _, r := range s.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) ByName(name string) []event.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Record
	for _, r := range s.records {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// Clear empties the log and drops every pending span timer.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.pending = make(map[string]SpanHandle)
}

// StartSpan opens a timed span for key. Starting a key that is already
// pending replaces the previous timer.
func (s *Store) StartSpan(key string) SpanHandle {
	h := SpanHandle{ID: uuid.New(), StartedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = h
	return h
}

// EndSpan consumes the pending timer for key and appends a timed record of
// the given kind. Ending a span that was never started, or with a handle
// superseded by a later start or a Clear, is a logged no-op.
func (s *Store) EndSpan(key string, h SpanHandle, kind event.Kind, attrs event.Attributes) {
	s.mu.Lock()
	pending, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		log.Warn().Str("key", key).Msg("timed span ended without a matching start")
		return
	}
	if pending.ID != h.ID {
		s.mu.Unlock()
		log.Warn().Str("key", key).Msg("timed span ended with a stale handle")
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	s.Add(event.NewTimed(kind, key, time.Since(h.StartedAt), attrs))
}

// PendingSpans reports how many span timers are currently in flight.
func (s *Store) PendingSpans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
