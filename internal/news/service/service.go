package service

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/alert"
	"github.com/zappabad/squawk/internal/news"
	newsview "github.com/zappabad/squawk/internal/news/view"
	"github.com/zappabad/squawk/internal/poll"
)

// Fetcher retrieves the newest feed events.
type Fetcher interface {
	LatestNews(ctx context.Context, limit int) ([]news.Event, error)
}

// Status describes the feed's load state.
type Status struct {
	Loaded bool
	// Err is the last fetch error seen before the first successful load.
	Err      error
	Cycles   uint64
	Failures uint64
}

// FeedService polls the feed, keeps the latest batch, and runs alerting on each batch.
type FeedService struct {
	cfg    Config
	view   *newsview.FeedView
	alerts *alert.Engine
	loop   *poll.Loop[[]news.Event]
	log    *zap.Logger

	cycle atomic.Uint64

	mu      sync.Mutex
	initErr error

	externalEvents chan newsview.BatchEvent
	droppedEvents  atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewFeedService creates a FeedService. Polling starts with Start.
// alerts may be nil to disable alerting entirely.
func NewFeedService(cfg Config, src Fetcher, alerts *alert.Engine, log *zap.Logger) *FeedService {
	def := DefaultConfig()
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = def.Poll.Interval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = def.ExternalEventBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &FeedService{
		cfg:            cfg,
		view:           newsview.NewFeedView(),
		alerts:         alerts,
		log:            log,
		externalEvents: make(chan newsview.BatchEvent, cfg.ExternalEventBuffer),
		closed:         make(chan struct{}),
	}
	s.loop = poll.New[[]news.Event]("feed", cfg.Poll, s.fetch(src), s.apply, log)
	return s
}

func (s *FeedService) fetch(src Fetcher) poll.FetchFunc[[]news.Event] {
	return func(ctx context.Context) ([]news.Event, error) {
		events, err := src.LatestNews(ctx, s.cfg.Limit)
		if err != nil && !s.view.Loaded() {
			s.mu.Lock()
			s.initErr = err
			s.mu.Unlock()
		}
		return events, err
	}
}

// apply runs on the loop goroutine once per successful poll.
func (s *FeedService) apply(events []news.Event) {
	ev := newsview.BatchEvent{
		Cycle:  s.cycle.Add(1),
		Events: events,
	}

	// Always update view (authoritative)
	s.view.Apply(ev)
	s.mu.Lock()
	s.initErr = nil
	s.mu.Unlock()

	if s.alerts != nil {
		s.alerts.Observe(events)
	}

	if s.cfg.DropExternalEvents {
		select {
		case s.externalEvents <- ev:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.externalEvents <- ev:
	case <-s.closed:
	}
}

// Start begins polling. The first poll is issued immediately.
func (s *FeedService) Start() {
	s.loop.Start()
}

// Refresh requests an immediate poll.
func (s *FeedService) Refresh() {
	s.loop.Trigger()
}

// Latest returns up to n events of the current batch, newest first.
func (s *FeedService) Latest(n int) []news.Event {
	return s.view.Latest(n)
}

// All returns the whole current batch, newest first.
func (s *FeedService) All() []news.Event {
	return s.view.Latest(s.view.Count())
}

// Find returns the event with id from the current batch.
func (s *FeedService) Find(id news.EventID) (news.Event, bool) {
	return s.view.Find(id)
}

// Status returns the feed's load state.
func (s *FeedService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Loaded:   s.view.Loaded(),
		Err:      s.initErr,
		Cycles:   s.loop.Cycles(),
		Failures: s.loop.Failures(),
	}
}

// Alerts returns the alert engine fed by this service, possibly nil.
func (s *FeedService) Alerts() *alert.Engine {
	return s.alerts
}

// Events returns the external events channel for subscribers.
// It is closed by Close.
func (s *FeedService) Events() <-chan newsview.BatchEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *FeedService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops polling and closes the events channel.
func (s *FeedService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.loop.Stop()
		close(s.externalEvents)
	})
}
