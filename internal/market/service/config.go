package service

import (
	"time"

	"github.com/zappabad/squawk/internal/poll"
)

// Config holds configuration for the market series service.
type Config struct {
	// Poll controls how often the selected ticker's series is refreshed.
	Poll poll.Config
	// Watchlist is the set of tickers the chart can cycle through.
	Watchlist []string
	// ExternalEventBuffer is the size of the external events channel.
	ExternalEventBuffer int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Poll: poll.Config{
			Interval: time.Minute,
			Timeout:  10 * time.Second,
		},
		Watchlist:           []string{"AAPL", "TSLA", "NVDA"},
		ExternalEventBuffer: 4,
	}
}
