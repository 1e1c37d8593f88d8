package poll

import "time"

// Config holds configuration for a poll loop.
type Config struct {
	// Interval is the delay between the end of one fetch and the start of the next.
	Interval time.Duration
	// Timeout bounds a single fetch. Zero means no per-fetch deadline.
	Timeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
	}
}
