package adapters

import (
	"context"
	"sync"

	ports "github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// SemaphoreLimiter bounds concurrent delegations per key. Acquire blocks
// until a slot frees or the context is done; release returns the slot.
type SemaphoreLimiter struct {
	mu       sync.Mutex
	slots    map[string]chan struct{}
	capacity int
}

// NewSemaphoreLimiter creates a limiter allowing capacity concurrent
// holders per key.
func NewSemaphoreLimiter(capacity int) *SemaphoreLimiter {
	if capacity < 1 {
		capacity = 1
	}
	return &SemaphoreLimiter{
		slots:    make(map[string]chan struct{}),
		capacity: capacity,
	}
}

// Acquire takes a slot for key, blocking until one is available.
func (l *SemaphoreLimiter) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sem, exists := l.slots[key]
	if !exists {
		sem = make(chan struct{}, l.capacity)
		l.slots[key] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ensure SemaphoreLimiter implements the RateLimiter interface.
var _ ports.RateLimiter = (*SemaphoreLimiter)(nil)
