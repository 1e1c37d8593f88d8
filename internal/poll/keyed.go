package poll

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// KeyedFetchFunc retrieves one snapshot for a key.
type KeyedFetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Keyed runs at most one Loop at a time, bound to the current key.
// Changing the key cancels the old loop before the new one starts, so a result
// fetched for a key that is no longer current is never delivered.
type Keyed[K comparable, T any] struct {
	name     string
	cfg      Config
	fetch    KeyedFetchFunc[K, T]
	onResult func(K, T)
	log      *zap.Logger

	mu      sync.Mutex
	key     K
	active  bool
	current *Loop[T]
	retired []*Loop[T]
	closed  bool
}

// NewKeyed creates an idle Keyed loop. Polling starts on the first SetKey.
// onResult must not call back into the Keyed.
func NewKeyed[K comparable, T any](name string, cfg Config, fetch KeyedFetchFunc[K, T], onResult func(K, T), log *zap.Logger) *Keyed[K, T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Keyed[K, T]{
		name:     name,
		cfg:      cfg,
		fetch:    fetch,
		onResult: onResult,
		log:      log,
	}
}

// SetKey switches polling to key. Setting the current key again is a no-op.
func (k *Keyed[K, T]) SetKey(key K) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return
	}
	if k.active && k.key == key {
		return
	}
	k.retireLocked()

	k.key = key
	k.active = true
	k.current = New(k.name, k.cfg,
		func(ctx context.Context) (T, error) { return k.fetch(ctx, key) },
		func(v T) { k.onResult(key, v) },
		k.log,
	)
	k.current.Start()
	k.log.Debug("poll key changed", zap.String("poll", k.name), zap.Any("key", key))
}

// Clear stops polling without selecting a new key.
func (k *Keyed[K, T]) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.retireLocked()
	var zero K
	k.key = zero
	k.active = false
}

// Key returns the current key and whether one is set.
func (k *Keyed[K, T]) Key() (K, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.key, k.active
}

// Trigger requests an immediate fetch for the current key.
func (k *Keyed[K, T]) Trigger() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.current != nil {
		k.current.Trigger()
	}
}

// Cancel stops polling permanently and waits for every loop goroutine to exit.
func (k *Keyed[K, T]) Cancel() {
	k.mu.Lock()
	k.closed = true
	k.retireLocked()
	var zero K
	k.key = zero
	k.active = false
	loops := k.retired
	k.retired = nil
	k.mu.Unlock()

	for _, l := range loops {
		l.Wait()
	}
}

func (k *Keyed[K, T]) retireLocked() {
	if k.current != nil {
		k.current.Cancel()
		k.retired = append(k.retired, k.current)
		k.current = nil
	}

	// drop loops that already exited
	live := k.retired[:0]
	for _, l := range k.retired {
		select {
		case <-l.Done():
		default:
			live = append(live, l)
		}
	}
	k.retired = live
}
