package view

import (
	"sync"

	"github.com/zappabad/squawk/internal/market"
)

// SeriesView keeps the last polled price series of every ticker seen.
type SeriesView struct {
	mu       sync.RWMutex
	byTicker map[string]market.Series
}

// NewSeriesView creates an empty SeriesView.
func NewSeriesView() *SeriesView {
	return &SeriesView{byTicker: make(map[string]market.Series)}
}

// Apply replaces the series of ev's ticker.
func (v *SeriesView) Apply(ev SeriesEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := ev.Series
	s.Points = append([]market.PricePoint(nil), s.Points...)
	v.byTicker[s.Ticker] = s
}

// Series returns a copy of ticker's series.
func (v *SeriesView) Series(ticker string) (market.Series, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.byTicker[ticker]
	if !ok {
		return market.Series{}, false
	}
	s.Points = append([]market.PricePoint(nil), s.Points...)
	return s, true
}
