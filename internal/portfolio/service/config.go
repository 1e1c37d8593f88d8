package service

import (
	"time"

	"github.com/zappabad/squawk/internal/poll"
)

// Config holds configuration for the portfolio service.
type Config struct {
	// Poll controls the portfolio poll cadence and per-fetch timeout.
	Poll poll.Config
	// ExternalEventBuffer is the size of the external events channel.
	ExternalEventBuffer int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Poll: poll.Config{
			Interval: 5 * time.Second,
			Timeout:  10 * time.Second,
		},
		ExternalEventBuffer: 4,
	}
}
