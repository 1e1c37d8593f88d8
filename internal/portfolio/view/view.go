package view

import (
	"sync"
	"time"

	"github.com/zappabad/squawk/internal/portfolio"
)

// UpdateEvent carries one polled portfolio.
type UpdateEvent struct {
	Cycle     uint64
	Portfolio portfolio.Portfolio
	At        time.Time
}

// PortfolioView holds the last polled portfolio.
type PortfolioView struct {
	mu      sync.RWMutex
	current portfolio.Portfolio
	at      time.Time
	cycle   uint64
	loaded  bool
}

// NewPortfolioView creates an empty PortfolioView.
func NewPortfolioView() *PortfolioView {
	return &PortfolioView{}
}

// Apply replaces the cached portfolio unless ev is older than what is cached.
func (v *PortfolioView) Apply(ev UpdateEvent) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.loaded && ev.Cycle <= v.cycle {
		return false
	}
	v.current = ev.Portfolio.Clone()
	v.at = ev.At
	v.cycle = ev.Cycle
	v.loaded = true
	return true
}

// Snapshot returns a copy of the cached portfolio and when it was fetched.
// ok is false until the first Apply.
func (v *PortfolioView) Snapshot() (p portfolio.Portfolio, at time.Time, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current.Clone(), v.at, v.loaded
}
