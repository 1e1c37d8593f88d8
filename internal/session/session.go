// Package session wires one dashboard session: the API client, every poll
// schedule, the alert engine, and the graph controller.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zappabad/squawk/internal/alert"
	"github.com/zappabad/squawk/internal/alert/journal"
	"github.com/zappabad/squawk/internal/client"
	commentsservice "github.com/zappabad/squawk/internal/comments/service"
	"github.com/zappabad/squawk/internal/graph"
	marketservice "github.com/zappabad/squawk/internal/market/service"
	"github.com/zappabad/squawk/internal/news"
	newsservice "github.com/zappabad/squawk/internal/news/service"
	"github.com/zappabad/squawk/internal/portfolio"
	portfolioservice "github.com/zappabad/squawk/internal/portfolio/service"
)

// Session owns all the subsystems of one dashboard and manages their lifecycle.
type Session struct {
	Client    *client.Client
	Alerts    *alert.Engine
	Journal   *journal.Journal
	Feed      *newsservice.FeedService
	Portfolio *portfolioservice.PortfolioService
	Comments  *commentsservice.CommentsService
	Market    *marketservice.MarketService
	Graph     *graph.Controller

	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
}

// New creates a Session. Nothing polls until Start.
func New(cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Magnitude == 0 {
		cfg.Magnitude = 1.0
	}
	s := &Session{cfg: cfg, log: log}

	s.Client = client.New(cfg.BaseURL, cfg.Timeout)

	// Create alert engine with speech and, when configured, the journal
	notifiers := []alert.Notifier{
		alert.SpeakerNotifier(alert.DetectSpeaker(cfg.SpeechCommand, log)),
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		s.Journal = j
		notifiers = append(notifiers, j)
	}
	s.Alerts = alert.NewEngine(alert.NewCursorStore(), log.Named("alert"), notifiers...)
	s.Alerts.SetEnabled(cfg.AlertsEnabled)

	// Create pollers
	s.Feed = newsservice.NewFeedService(cfg.FeedConfig, s.Client, s.Alerts, log.Named("feed"))
	s.Portfolio = portfolioservice.NewPortfolioService(cfg.PortfolioConfig, s.Client, log.Named("portfolio"))
	s.Comments = commentsservice.NewCommentsService(cfg.CommentsConfig, s.Client, log.Named("comments"))
	s.Market = marketservice.NewMarketService(cfg.MarketConfig, s.Client, log.Named("market"))

	// Create graph controller; the view attaches its focuser later
	s.Graph = graph.NewController(
		client.GraphSource{Client: s.Client, Path: cfg.GraphPath},
		nil,
		log.Named("graph"),
	)

	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Watchlist returns the tickers pinned in the feed.
func (s *Session) Watchlist() []string {
	return append([]string(nil), s.cfg.Watchlist...)
}

// Magnitude returns the shock magnitude used for selections.
func (s *Session) Magnitude() float64 {
	return s.cfg.Magnitude
}

// Start begins the feed and portfolio schedules and selects the first chart ticker.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	s.Feed.Start()
	s.Portfolio.Start()
	if _, err := s.Market.Cycle(0); err != nil {
		s.log.Debug("no chart ticker", zap.Error(err))
	}
}

// Snapshot is a one-shot view of the remote state.
type Snapshot struct {
	News      []news.Event        `json:"news"`
	Portfolio portfolio.Portfolio `json:"portfolio"`
	Graph     graph.Model         `json:"graph"`
}

// Snapshot fetches the feed, the portfolio and the graph concurrently.
// It does not touch the running schedules.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := s.Client.LatestNews(ctx, s.cfg.FeedConfig.Limit)
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		snap.News = events
		return nil
	})
	g.Go(func() error {
		p, err := s.Client.Portfolio(ctx)
		if err != nil {
			return fmt.Errorf("portfolio: %w", err)
		}
		snap.Portfolio = p
		return nil
	})
	g.Go(func() error {
		m, err := s.Client.Graph(ctx, s.cfg.GraphPath)
		if err != nil {
			return fmt.Errorf("graph: %w", err)
		}
		snap.Graph = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Close shuts down all subsystems in reverse dependency order.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	// Stop thread and chart pollers first
	s.Comments.Close()
	s.Market.Close()

	// Stop independent schedules
	s.Portfolio.Close()
	s.Feed.Close()

	s.Graph.Close()

	// Cancel speech and let journal writes finish before the journal goes away
	s.Alerts.Close()
	if s.Journal != nil {
		if err := s.Journal.Close(); err != nil {
			s.log.Warn("journal close failed", zap.Error(err))
		}
	}
	s.Client.CloseIdleConnections()
}
