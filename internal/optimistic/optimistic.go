// Package optimistic applies a local change before its remote write
// completes and rolls it back when the write fails.
package optimistic

import (
	"context"
	"errors"
	"sync"
)

// ErrInFlight is returned when a mutation for the same key is still running.
var ErrInFlight = errors.New("optimistic: mutation already in flight")

// Value holds a view value that is updated optimistically.
type Value[T any] struct {
	mu sync.RWMutex
	v  T
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set replaces the value without a remote write, e.g. after a reload.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	o.mu.Unlock()
}

// Update replaces the value with fn applied to it, atomically.
func (o *Value[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.v = fn(o.v)
	return o.v
}

// Apply shows next immediately, then runs mutate. On success the value
// becomes what mutate returned; on failure the captured prior value is
// restored and the error returned. The lock is not held while mutate runs,
// so readers observe next in the meantime. Concurrent Applies are
// last-write-wins.
func (o *Value[T]) Apply(ctx context.Context, next T, mutate func(ctx context.Context) (T, error)) (T, error) {
	o.mu.Lock()
	prev := o.v
	o.v = next
	o.mu.Unlock()

	canonical, err := mutate(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.v = prev
		return prev, err
	}
	o.v = canonical
	return canonical, nil
}

// Pending tracks keys with a mutation in flight.
type Pending[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

func NewPending[K comparable]() *Pending[K] {
	return &Pending[K]{keys: make(map[K]struct{})}
}

// Begin marks k in flight. The returned func clears it and must be called
// once the mutation settles.
func (p *Pending[K]) Begin(k K) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.keys[k]; ok {
		return nil, ErrInFlight
	}
	p.keys[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.keys, k)
			p.mu.Unlock()
		})
	}, nil
}

func (p *Pending[K]) InFlight(k K) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.keys[k]
	return ok
}
