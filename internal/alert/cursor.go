package alert

import "sync"

// CursorStore holds the alert cursor across poll cycles.
// It is the only place that records what has been seen.
type CursorStore struct {
	mu     sync.Mutex
	cursor Cursor
}

// NewCursorStore returns a store holding the null cursor.
func NewCursorStore() *CursorStore {
	return &CursorStore{}
}

// Load returns the current cursor.
func (s *CursorStore) Load() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Store replaces the current cursor.
func (s *CursorStore) Store(c Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = c
}
