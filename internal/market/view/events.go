package view

import "github.com/zappabad/squawk/internal/market"

// SeriesEvent carries one polled price series.
type SeriesEvent struct {
	Series market.Series
}
