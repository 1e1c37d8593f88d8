package session

import (
	"time"

	commentsservice "github.com/zappabad/squawk/internal/comments/service"
	"github.com/zappabad/squawk/internal/config"
	marketservice "github.com/zappabad/squawk/internal/market/service"
	newsservice "github.com/zappabad/squawk/internal/news/service"
	"github.com/zappabad/squawk/internal/poll"
	portfolioservice "github.com/zappabad/squawk/internal/portfolio/service"
)

// Config holds configuration for one dashboard session.
type Config struct {
	// BaseURL is the API root every client call is made against.
	BaseURL string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// FeedConfig is the configuration for the feed service.
	FeedConfig newsservice.Config
	// PortfolioConfig is the configuration for the portfolio service.
	PortfolioConfig portfolioservice.Config
	// CommentsConfig is the configuration for the comments service.
	CommentsConfig commentsservice.Config
	// MarketConfig is the configuration for the price series service.
	MarketConfig marketservice.Config
	// GraphPath is the endpoint the causal graph is loaded from.
	GraphPath string
	// Magnitude is the shock magnitude used for node selections.
	Magnitude float64
	// Watchlist tickers are pinned to the top of the feed.
	Watchlist []string
	// AlertsEnabled is the squawk state at startup.
	AlertsEnabled bool
	// SpeechCommand overrides the platform text-to-speech program.
	SpeechCommand string
	// JournalPath enables the alert journal when set.
	JournalPath string
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return FromAppConfig(config.Default())
}

// FromAppConfig maps the file/env configuration onto service configs.
func FromAppConfig(c config.Config) Config {
	feed := newsservice.DefaultConfig()
	feed.Poll = poll.Config{Interval: c.Feed.Interval, Timeout: c.API.Timeout}
	feed.Limit = c.Feed.Limit

	pf := portfolioservice.DefaultConfig()
	pf.Poll = poll.Config{Interval: c.Portfolio.Interval, Timeout: c.API.Timeout}

	cm := commentsservice.DefaultConfig()
	cm.Poll = poll.Config{Interval: c.Comments.Interval, Timeout: c.API.Timeout}
	cm.UserID = c.Comments.UserID

	mk := marketservice.DefaultConfig()
	mk.Poll = poll.Config{Interval: c.Market.Interval, Timeout: c.API.Timeout}
	mk.Watchlist = c.Analytics.Tickers

	return Config{
		BaseURL:         c.API.BaseURL,
		Timeout:         c.API.Timeout,
		FeedConfig:      feed,
		PortfolioConfig: pf,
		CommentsConfig:  cm,
		MarketConfig:    mk,
		GraphPath:       c.Graph.Path,
		Magnitude:       c.Graph.Magnitude,
		Watchlist:       c.Feed.Watchlist,
		AlertsEnabled:   c.Alerts.Enabled,
		SpeechCommand:   c.Alerts.Command,
		JournalPath:     c.Alerts.Journal,
	}
}
