package service

import (
	"time"

	"github.com/zappabad/squawk/internal/poll"
)

// Config holds configuration for the feed service.
type Config struct {
	// Poll controls the feed poll cadence and per-fetch timeout.
	Poll poll.Config
	// Limit is the number of events requested per poll.
	Limit int
	// ExternalEventBuffer is the size of the external events channel.
	ExternalEventBuffer int
	// DropExternalEvents determines whether external event channel drops on overflow.
	DropExternalEvents bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Poll: poll.Config{
			Interval: 5 * time.Second,
			Timeout:  10 * time.Second,
		},
		Limit:               50,
		ExternalEventBuffer: 16,
		DropExternalEvents:  true,
	}
}
