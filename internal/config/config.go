// Package config loads the dashboard configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for squawk.
type Config struct {
	API       API       `yaml:"api"`
	Feed      Feed      `yaml:"feed"`
	Portfolio Poll      `yaml:"portfolio"`
	Comments  Comments  `yaml:"comments"`
	Market    Market    `yaml:"market"`
	Graph     Graph     `yaml:"graph"`
	Alerts    Alerts    `yaml:"alerts"`
	Logging   Logging   `yaml:"logging"`
	Analytics Analytics `yaml:"analytics"`
}

// API locates the market-intelligence service.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Poll is a fixed polling cadence.
type Poll struct {
	Interval time.Duration `yaml:"interval"`
}

// Feed configures the news feed schedule.
type Feed struct {
	Interval  time.Duration `yaml:"interval"`
	Limit     int           `yaml:"limit"`
	Watchlist []string      `yaml:"watchlist"`
}

// Comments configures the discussion threads.
type Comments struct {
	Interval time.Duration `yaml:"interval"`
	UserID   string        `yaml:"user_id"`
}

// Market configures the price chart.
type Market struct {
	Interval time.Duration `yaml:"interval"`
}

// Graph configures the causal graph view.
type Graph struct {
	Path      string  `yaml:"path"`
	Magnitude float64 `yaml:"magnitude"`
}

// Alerts configures the audible squawk.
type Alerts struct {
	// Enabled is the squawk state at startup.
	Enabled bool `yaml:"enabled"`
	// Command is the speech program; empty picks the platform default.
	Command string `yaml:"command"`
	// Journal is the SQLite path of the alert journal; empty disables it.
	Journal string `yaml:"journal"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
	// File receives logs while the dashboard owns the terminal.
	File string `yaml:"file"`
}

// Analytics lists the tickers offered on the chart.
type Analytics struct {
	Tickers []string `yaml:"tickers"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:8000/api",
			Timeout: 10 * time.Second,
		},
		Feed: Feed{
			Interval:  5 * time.Second,
			Limit:     50,
			Watchlist: []string{"AAPL", "TSLA", "NVDA"},
		},
		Portfolio: Poll{Interval: 5 * time.Second},
		Comments:  Comments{Interval: 5 * time.Second},
		Market:    Market{Interval: time.Minute},
		Graph: Graph{
			Path:      "/butterfly-effect/graph",
			Magnitude: 1.0,
		},
		Logging: Logging{
			Level: "info",
			File:  "squawk.log",
		},
		Analytics: Analytics{
			Tickers: []string{"AAPL", "TSLA", "GOOGL", "AMZN", "MSFT", "NVDA", "JPM", "GS"},
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SQUAWK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SQUAWK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SQUAWK_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("SQUAWK_USER_ID"); v != "" {
		cfg.Comments.UserID = v
	}
	if v := os.Getenv("SQUAWK_JOURNAL"); v != "" {
		cfg.Alerts.Journal = v
	}
	if v := os.Getenv("SQUAWK_ALERTS"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SQUAWK_ALERTS: %w", err)
		}
		cfg.Alerts.Enabled = on
	}
	return nil
}

// Validate rejects configurations the dashboard cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.Graph.Path, "/") {
		return fmt.Errorf("graph.path %q must start with /", c.Graph.Path)
	}
	if c.Feed.Limit < 0 {
		return fmt.Errorf("feed.limit %d must not be negative", c.Feed.Limit)
	}
	return nil
}
