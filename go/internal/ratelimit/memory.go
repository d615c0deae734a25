package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryLimiter keeps per-key event timestamps in process.
type MemoryLimiter struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	events map[string][]time.Time
}

func NewMemoryLimiter(clock clockwork.Clock) *MemoryLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryLimiter{clock: clock, events: make(map[string][]time.Time)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, window time.Duration, limit int) (bool, error) {
	now := m.clock.Now()
	cutoff := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[key][:0]
	for _, ts := range m.events[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limit {
		m.events[key] = kept
		return false, nil
	}
	m.events[key] = append(kept, now)
	return true, nil
}

// Sweep drops keys with no events inside window.
func (m *MemoryLimiter) Sweep(window time.Duration) {
	cutoff := m.clock.Now().Add(-window)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, events := range m.events {
		if len(events) == 0 || !events[len(events)-1].After(cutoff) {
			delete(m.events, key)
		}
	}
}
