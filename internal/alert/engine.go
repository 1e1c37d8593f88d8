package alert

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zappabad/squawk/internal/news"
)

// notifyTimeout bounds a single fire-and-forget notification.
const notifyTimeout = 30 * time.Second

// Durable is implemented by notifiers whose work must outlive Close, such as
// a journal write. They are bounded by notifyTimeout only.
type Durable interface {
	Durable() bool
}

// Engine applies Decide to each batch, keeps the cursor, and fires notifiers.
type Engine struct {
	store     *CursorStore
	notifiers []Notifier
	log       *zap.Logger

	enabled atomic.Bool
	fired   atomic.Int64

	// mu serialises Observe so overlapping cycles see a consistent cursor.
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates an Engine with alerting disabled.
func NewEngine(store *CursorStore, log *zap.Logger, notifiers ...Notifier) *Engine {
	if store == nil {
		store = NewCursorStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:     store,
		notifiers: notifiers,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetEnabled turns alerting on or off. The cursor is untouched.
func (e *Engine) SetEnabled(on bool) {
	e.enabled.Store(on)
	e.log.Info("squawk toggled", zap.Bool("enabled", on))
}

// Toggle flips alerting and returns the new state.
func (e *Engine) Toggle() bool {
	for {
		old := e.enabled.Load()
		if e.enabled.CompareAndSwap(old, !old) {
			e.log.Info("squawk toggled", zap.Bool("enabled", !old))
			return !old
		}
	}
}

// Enabled reports whether alerting is on.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// Cursor returns the current cursor.
func (e *Engine) Cursor() Cursor {
	return e.store.Load()
}

// Fired returns the number of alerts fired so far.
func (e *Engine) Fired() int64 {
	return e.fired.Load()
}

// Observe runs one decision cycle over a newest-first batch.
// Notifications are dispatched in the background and never awaited or retried.
func (e *Engine) Observe(batch []news.Event) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := Decide(batch, e.store.Load(), e.enabled.Load())
	e.store.Store(d.Cursor)

	if d.ShouldAlert {
		e.fired.Add(1)
		e.log.Info("high impact alert",
			zap.String("id", string(d.Event.ID)),
			zap.String("ticker", d.Event.Ticker),
		)
		e.dispatch(d.Event)
	}
	return d
}

func (e *Engine) dispatch(ev news.Event) {
	if e.ctx.Err() != nil {
		return
	}
	for _, n := range e.notifiers {
		e.wg.Add(1)
		go func(n Notifier) {
			defer e.wg.Done()
			parent := e.ctx
			if d, ok := n.(Durable); ok && d.Durable() {
				parent = context.WithoutCancel(e.ctx)
			}
			ctx, cancel := context.WithTimeout(parent, notifyTimeout)
			defer cancel()
			if err := n.Notify(ctx, ev); err != nil {
				e.log.Warn("alert notification failed",
					zap.String("id", string(ev.ID)),
					zap.Error(err),
				)
			}
		}(n)
	}
}

// Close cancels outstanding notifications and waits for them to return.
// Durable notifiers are not cancelled; Close waits for them to finish.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancel()
	e.mu.Unlock()
	e.wg.Wait()
}
