package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/poll"
	"github.com/zappabad/squawk/internal/portfolio"
	portfolioview "github.com/zappabad/squawk/internal/portfolio/view"
)

// Fetcher retrieves the current portfolio.
type Fetcher interface {
	Portfolio(ctx context.Context) (portfolio.Portfolio, error)
}

// PortfolioService polls the simulated trader's portfolio.
// It runs independently of the feed; nothing orders its updates against feed updates.
type PortfolioService struct {
	cfg  Config
	view *portfolioview.PortfolioView
	loop *poll.Loop[portfolio.Portfolio]
	now  func() time.Time

	cycle atomic.Uint64

	externalEvents chan portfolioview.UpdateEvent
	droppedEvents  atomic.Int64

	closeOnce sync.Once
}

// NewPortfolioService creates a PortfolioService. Polling starts with Start.
func NewPortfolioService(cfg Config, src Fetcher, log *zap.Logger) *PortfolioService {
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultConfig().Poll.Interval
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}

	s := &PortfolioService{
		cfg:            cfg,
		view:           portfolioview.NewPortfolioView(),
		now:            time.Now,
		externalEvents: make(chan portfolioview.UpdateEvent, cfg.ExternalEventBuffer),
	}
	s.loop = poll.New[portfolio.Portfolio]("portfolio", cfg.Poll, src.Portfolio, s.apply, log)
	return s
}

func (s *PortfolioService) apply(p portfolio.Portfolio) {
	ev := portfolioview.UpdateEvent{
		Cycle:     s.cycle.Add(1),
		Portfolio: p,
		At:        s.now(),
	}
	s.view.Apply(ev)

	select {
	case s.externalEvents <- ev:
	default:
		s.droppedEvents.Add(1)
	}
}

// Start begins polling. The first poll is issued immediately.
func (s *PortfolioService) Start() {
	s.loop.Start()
}

// Refresh requests an immediate poll.
func (s *PortfolioService) Refresh() {
	s.loop.Trigger()
}

// Snapshot returns the last polled portfolio.
func (s *PortfolioService) Snapshot() (portfolio.Portfolio, time.Time, bool) {
	return s.view.Snapshot()
}

// Events returns the external events channel. It is closed by Close.
func (s *PortfolioService) Events() <-chan portfolioview.UpdateEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *PortfolioService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops polling and closes the events channel.
func (s *PortfolioService) Close() {
	s.closeOnce.Do(func() {
		s.loop.Stop()
		close(s.externalEvents)
	})
}
