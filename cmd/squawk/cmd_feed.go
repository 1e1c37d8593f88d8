package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/alert"
	"github.com/zappabad/squawk/internal/client"
	"github.com/zappabad/squawk/internal/news"
)

var (
	feedLimit    int
	feedHighOnly bool
)

// feedCmd prints one poll of the feed
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the latest feed events",
	Long: `Fetch the feed once and print it newest first, with watchlist tickers pinned.

The head event is marked when it would be spoken by the squawk.`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 0, "Number of events (default from config)")
	feedCmd.Flags().BoolVar(&feedHighOnly, "high", false, "Only print high impact events")
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	limit := feedLimit
	if limit <= 0 {
		limit = cfg.Feed.Limit
	}

	c := client.New(cfg.API.BaseURL, cfg.API.Timeout)
	events, err := c.LatestNews(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	logger.Debug("feed fetched", zap.Int("events", len(events)))

	// what a fresh dashboard with squawk on would announce
	decision := alert.Decide(events, alert.Cursor{}, true)

	t := newTable(" ", "TIME", "IMPACT", "TREND", "TICKER", "HEADLINE")
	for _, ev := range news.PinnedFirst(events, cfg.Feed.Watchlist) {
		if feedHighOnly && ev.Impact != news.ImpactHigh {
			continue
		}
		mark := " "
		switch {
		case decision.ShouldAlert && ev.ID == decision.Event.ID:
			mark = "!"
		case news.Pinned(ev, cfg.Feed.Watchlist):
			mark = "*"
		}
		t.Row(mark, ev.Timestamp, ev.Impact.String(), trendWord(ev.Trend()), ev.Ticker, ev.Headline)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}

func trendWord(t news.Trend) string {
	switch t {
	case news.TrendUp:
		return "up"
	case news.TrendDown:
		return "down"
	default:
		return "flat"
	}
}
