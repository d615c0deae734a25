package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chisports/gmengine/go/internal/apperr"
)

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	lim := NewMemoryLimiter(clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := lim.Allow(ctx, "u1", time.Minute, 3)
		if err != nil || !ok {
			t.Fatalf("expected call %d to be allowed, got ok=%v err=%v", i+1, ok, err)
		}
		clock.Advance(10 * time.Second)
	}
	if ok, _ := lim.Allow(ctx, "u1", time.Minute, 3); ok {
		t.Fatal("expected fourth call inside the window to be denied")
	}
	if ok, _ := lim.Allow(ctx, "u2", time.Minute, 3); !ok {
		t.Fatal("expected a different key to have its own budget")
	}

	// First event was at t=0; at t=61s it has left the window.
	clock.Advance(31 * time.Second)
	if ok, _ := lim.Allow(ctx, "u1", time.Minute, 3); !ok {
		t.Fatal("expected a slot to free up once the oldest event expires")
	}
}

func TestMemoryLimiterDeniedCallsDoNotConsume(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lim := NewMemoryLimiter(clock)
	ctx := context.Background()

	lim.Allow(ctx, "k", time.Minute, 1)
	for i := 0; i < 5; i++ {
		lim.Allow(ctx, "k", time.Minute, 1)
	}
	clock.Advance(time.Minute + time.Second)
	if ok, _ := lim.Allow(ctx, "k", time.Minute, 1); !ok {
		t.Fatal("expected denied calls not to extend the window")
	}
}

func TestMemoryLimiterSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lim := NewMemoryLimiter(clock)
	lim.Allow(context.Background(), "k", time.Minute, 1)
	clock.Advance(2 * time.Minute)
	lim.Sweep(time.Minute)
	if len(lim.events) != 0 {
		t.Fatalf("expected sweep to drop idle keys, got %d", len(lim.events))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, time.Duration, int) (bool, error) {
	return false, errors.New("redis: connection refused")
}

type countingRecorder struct {
	limited int
	errors  int
}

func (c *countingRecorder) RecordRateLimited(string) { c.limited++ }
func (c *countingRecorder) RecordLimiterError()      { c.errors++ }

func TestGuardFailsOpen(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGuard(failingLimiter{}, rec, "submit_trade", Rule{Window: time.Minute, Limit: 1})
	if err := g.Check(context.Background(), "u1"); err != nil {
		t.Fatalf("expected limiter errors to allow the request, got %v", err)
	}
	if rec.errors != 1 {
		t.Fatalf("expected 1 limiter error, got %d", rec.errors)
	}
}

func TestGuardReturnsRateLimited(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGuard(NewMemoryLimiter(clockwork.NewFakeClock()), rec, "export_trades", Rule{Window: time.Minute, Limit: 1})
	ctx := context.Background()
	if err := g.Check(ctx, "u1"); err != nil {
		t.Fatalf("expected first export to pass, got %v", err)
	}
	err := g.Check(ctx, "u1")
	if apperr.CodeOf(err) != apperr.CodeRateLimited {
		t.Fatalf("expected rate_limited, got %v", err)
	}
	if rec.limited != 1 {
		t.Fatalf("expected 1 rate limited event, got %d", rec.limited)
	}

	var nilGuard *Guard
	if err := nilGuard.Check(ctx, "u1"); err != nil {
		t.Fatalf("expected nil guard to allow, got %v", err)
	}
}
