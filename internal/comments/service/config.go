package service

import (
	"time"

	"github.com/zappabad/squawk/internal/poll"
)

// Config holds configuration for the comments service.
type Config struct {
	// Poll controls the thread poll cadence and per-fetch timeout.
	Poll poll.Config
	// UserID is the author of comments posted from this session.
	// Empty generates a Trader_xxxxxxxx id.
	UserID string
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
		ExternalEventBuffer: 8,
	}
}
