package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/market"
	marketview "github.com/zappabad/squawk/internal/market/view"
	"github.com/zappabad/squawk/internal/poll"
)

var ErrUnknownTicker = errors.New("unknown ticker")

// Fetcher retrieves a ticker's daily price series.
type Fetcher interface {
	MarketData(ctx context.Context, ticker string) ([]market.PricePoint, error)
}

// MarketService polls the price series of the ticker shown on the chart.
// Selecting another ticker cancels the previous ticker's loop.
type MarketService struct {
	cfg   Config
	view  *marketview.SeriesView
	keyed *poll.Keyed[string, []market.PricePoint]

	externalEvents chan marketview.SeriesEvent
	droppedEvents  atomic.Int64

	closeOnce sync.Once
}

// NewMarketService creates an idle MarketService.
func NewMarketService(cfg Config, src Fetcher, log *zap.Logger) *MarketService {
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultConfig().Poll.Interval
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}
	watch := make([]string, 0, len(cfg.Watchlist))
	for _, t := range cfg.Watchlist {
		if t = market.NormalizeTicker(t); t != "" && !slices.Contains(watch, t) {
			watch = append(watch, t)
		}
	}
	cfg.Watchlist = watch

	s := &MarketService{
		cfg:            cfg,
		view:           marketview.NewSeriesView(),
		externalEvents: make(chan marketview.SeriesEvent, cfg.ExternalEventBuffer),
	}
	s.keyed = poll.NewKeyed[string, []market.PricePoint]("market", cfg.Poll, src.MarketData, s.apply, log)
	return s
}

func (s *MarketService) apply(ticker string, points []market.PricePoint) {
	ev := marketview.SeriesEvent{Series: market.Series{Ticker: ticker, Points: points}}
	s.view.Apply(ev)

	select {
	case s.externalEvents <- ev:
	default:
		s.droppedEvents.Add(1)
	}
}

// GetTickers returns the watchlist.
func (s *MarketService) GetTickers() []string {
	return append([]string(nil), s.cfg.Watchlist...)
}

// Select starts polling ticker's series.
func (s *MarketService) Select(ticker string) error {
	ticker = market.NormalizeTicker(ticker)
	if ticker == "" {
		return ErrUnknownTicker
	}
	s.keyed.SetKey(ticker)
	return nil
}

// Selected returns the ticker being polled.
func (s *MarketService) Selected() (string, bool) {
	return s.keyed.Key()
}

// Cycle selects the watchlist ticker step positions away from the current one.
func (s *MarketService) Cycle(step int) (string, error) {
	n := len(s.cfg.Watchlist)
	if n == 0 {
		return "", ErrUnknownTicker
	}
	cur, _ := s.keyed.Key()
	i := slices.Index(s.cfg.Watchlist, cur)
	if i < 0 {
		i = 0
		step = 0
	}
	next := s.cfg.Watchlist[((i+step)%n+n)%n]
	s.keyed.SetKey(next)
	return next, nil
}

// Series returns the last polled series of ticker.
func (s *MarketService) Series(ticker string) (market.Series, bool) {
	return s.view.Series(market.NormalizeTicker(ticker))
}

// Refresh requests an immediate poll of the selected ticker.
func (s *MarketService) Refresh() {
	s.keyed.Trigger()
}

// Events returns the external events channel. It is closed by Close.
func (s *MarketService) Events() <-chan marketview.SeriesEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *MarketService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops polling and closes the events channel.
func (s *MarketService) Close() {
	s.closeOnce.Do(func() {
		s.keyed.Cancel()
		close(s.externalEvents)
	})
}
