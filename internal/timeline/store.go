package timeline

import (
	"sync"

	"github.com/MikeSquared-Agency/loom/internal/metrics"
)

// Store is the ordered, deduplicated timeline for one session. Insertion order
// is display order; entries are never reordered or removed. Every insertion
// path goes through Append, so replaying the same history is a no-op.
type Store struct {
	mu       sync.Mutex
	messages []Message
	onChange func(snapshot []Message)
}

func NewStore() *Store {
	return &Store{}
}

// OnChange registers a callback invoked with a fresh snapshot after every
// successful append. Must be set before the store is shared.
func (s *Store) OnChange(fn func(snapshot []Message)) {
	s.onChange = fn
}

// Append inserts the message unless an entry with the same identity key is
// already present. The dedup check is a linear scan: the timeline is bounded
// by one session's history and stays small. Returns true if inserted.
//
// The change callback runs under the lock: consumers see snapshots in
// insertion order, so the latest notification is always the current state.
// Callbacks must not call back into the store.
func (s *Store) Append(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := m.Key()
	for _, existing := range s.messages {
		if existing.Key() == key {
			metrics.DuplicatesSkipped.Inc()
			return false
		}
	}
	m.SequenceIndex = len(s.messages)
	s.messages = append(s.messages, m)

	metrics.MessagesAppended.WithLabelValues(string(m.Kind)).Inc()
	if s.onChange != nil {
		s.onChange(s.snapshotLocked())
	}
	return true
}

// Snapshot returns a copy of the timeline in display order.
func (s *Store) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of messages in the timeline.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Store) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
