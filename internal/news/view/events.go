package view

import "github.com/zappabad/squawk/internal/news"

// BatchEvent is one complete feed poll, newest event first.
type BatchEvent struct {
	Cycle  uint64
	Events []news.Event
}
