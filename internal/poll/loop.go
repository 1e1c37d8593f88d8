// Package poll runs fixed-interval fetch loops.
//
// A Loop fetches immediately on Start, applies the result, and only then arms
// the timer for the next cycle, so two fetches of the same loop are never in
// flight together. Fetch errors are logged and the loop keeps going.
package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// FetchFunc retrieves one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loop polls a single source on a fixed interval.
type Loop[T any] struct {
	name     string
	cfg      Config
	fetch    FetchFunc[T]
	onResult func(T)
	log      *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}

	// mu serialises onResult against Cancel.
	mu      sync.Mutex
	stopped bool

	startOnce sync.Once
	started   atomic.Bool

	cycles   atomic.Uint64
	failures atomic.Uint64
}

// New creates a Loop. It does nothing until Start is called.
// onResult runs on the loop goroutine and must not call Cancel or Stop on the same loop.
func New[T any](name string, cfg Config, fetch FetchFunc[T], onResult func(T), log *zap.Logger) *Loop[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loop[T]{
		name:     name,
		cfg:      cfg,
		fetch:    fetch,
		onResult: onResult,
		log:      log.With(zap.String("poll", name)),
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start begins polling. The first fetch is issued immediately.
func (l *Loop[T]) Start() {
	l.startOnce.Do(func() {
		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			close(l.done)
			return
		}
		l.started.Store(true)
		go l.run()
	})
}

func (l *Loop[T]) run() {
	defer close(l.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-timer.C:
		case <-l.trigger:
			timer.Stop()
		}

		l.cycle()

		if l.ctx.Err() != nil {
			return
		}
		timer.Reset(l.cfg.Interval)
	}
}

func (l *Loop[T]) cycle() {
	ctx := l.ctx
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(l.ctx, l.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := l.fetch(ctx)
	if err != nil {
		if l.ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		l.failures.Add(1)
		l.log.Warn("fetch failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		l.log.Debug("dropping result of canceled loop")
		return
	}
	l.onResult(res)
	l.cycles.Add(1)
}

// Trigger requests an immediate fetch. The fetch runs on the loop goroutine
// after any in-flight cycle has been applied; repeated triggers coalesce.
func (l *Loop[T]) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Cancel stops the loop. Once Cancel returns, onResult is never invoked again.
// It does not wait for an in-flight fetch to return; use Stop for that.
func (l *Loop[T]) Cancel() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.cancel()
}

// Wait blocks until the loop goroutine has exited. It returns immediately for
// a loop that was never started.
func (l *Loop[T]) Wait() {
	if !l.started.Load() {
		return
	}
	<-l.done
}

// Stop cancels the loop and waits for its goroutine to exit.
func (l *Loop[T]) Stop() {
	l.Cancel()
	l.Wait()
}

// Done is closed when the loop goroutine exits.
func (l *Loop[T]) Done() <-chan struct{} {
	return l.done
}

// Cycles returns the number of results applied so far.
func (l *Loop[T]) Cycles() uint64 {
	return l.cycles.Load()
}

// Failures returns the number of fetches that returned an error.
func (l *Loop[T]) Failures() uint64 {
	return l.failures.Load()
}

// Name returns the loop name used in logs.
func (l *Loop[T]) Name() string {
	return l.name
}
