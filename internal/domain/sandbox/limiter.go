package sandbox

import (
	"context"
	"sync"
)

// Limiter bounds the number of isolates alive at once. Unlike a pool it hands
// out slots, not runtimes: every run builds a fresh isolate, so no state can
// leak between runs.
type Limiter struct {
	slots  chan struct{}
	size   int
	mu     sync.RWMutex
	closed bool
}

// NewLimiter creates a limiter with the given number of run slots.
func NewLimiter(size int) *Limiter {
	if size <= 0 {
		size = 4
	}
	l := &Limiter{
		slots: make(chan struct{}, size),
		size:  size,
	}
	for i := 0; i < size; i++ {
		l.slots <- struct{}{}
	}
	return l
}

// Acquire takes a run slot, waiting until one frees up or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrLimiterClosed
	}
	l.mu.RUnlock()

	select {
	case <-l.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot.
func (l *Limiter) Release() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.slots <- struct{}{}:
	default:
	}
}

// Close rejects further acquisitions.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// Stats returns limiter bookkeeping for health reporting.
func (l *Limiter) Stats() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return map[string]any{
		"size":      l.size,
		"available": len(l.slots),
		"in_use":    l.size - len(l.slots),
		"closed":    l.closed,
	}
}
