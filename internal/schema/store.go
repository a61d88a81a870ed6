package schema

import "sync/atomic"

// Store holds the current snapshot. Load and Swap are safe for concurrent use;
// a reader keeps whichever snapshot it loaded for the rest of its request.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding initial, or an empty snapshot if nil.
func NewStore(initial *Snapshot) *Store {
	if initial == nil {
		initial = Empty()
	}
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Swap replaces the current snapshot and returns the previous one.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	if next == nil {
		next = Empty()
	}
	return s.current.Swap(next)
}
