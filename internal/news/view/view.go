package view

import (
	"sync"

	"github.com/zappabad/squawk/internal/news"
)

// FeedView holds the most recent complete feed batch.
// Each Apply replaces the cache wholesale; batches are never merged.
type FeedView struct {
	mu     sync.RWMutex
	events []news.Event
	cycle  uint64
	loaded bool
}

// NewFeedView creates an empty FeedView.
func NewFeedView() *FeedView {
	return &FeedView{}
}

// Apply replaces the cached batch. Batches older than the cached cycle are ignored.
func (v *FeedView) Apply(ev BatchEvent) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.loaded && ev.Cycle <= v.cycle {
		return false
	}
	events := make([]news.Event, len(ev.Events))
	copy(events, ev.Events)
	v.events = events
	v.cycle = ev.Cycle
	v.loaded = true
	return true
}

// Latest returns up to n events, newest first.
// Returns a copy (not internal references).
func (v *FeedView) Latest(n int) []news.Event {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if n <= 0 || len(v.events) == 0 {
		return nil
	}
	if n > len(v.events) {
		n = len(v.events)
	}
	out := make([]news.Event, n)
	copy(out, v.events[:n])
	return out
}

// Head returns the newest event of the cached batch.
func (v *FeedView) Head() (news.Event, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.events) == 0 {
		return news.Event{}, false
	}
	return v.events[0], true
}

// Find returns the cached event with the given id.
func (v *FeedView) Find(id news.EventID) (news.Event, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, ev := range v.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return news.Event{}, false
}

// Count returns the number of cached events.
func (v *FeedView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.events)
}

// Loaded reports whether at least one batch has been applied.
func (v *FeedView) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}
