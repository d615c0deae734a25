// Package ratelimit provides sliding-window limiters keyed by caller.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chisports/gmengine/go/internal/apperr"
)

// Limiter decides whether one more event for key fits within limit events
// per window. Allowed events are recorded; denied ones are not.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, error)
}

// Recorder is the metrics surface the Guard reports to.
type Recorder interface {
	RecordRateLimited(action string)
	RecordLimiterError()
}

// Rule is a window/limit pair for one action.
type Rule struct {
	Window time.Duration `yaml:"window"`
	Limit  int           `yaml:"limit"`
}

// Guard applies a Rule for one named action. Limiter errors fail open.
type Guard struct {
	limiter Limiter
	metrics Recorder
	action  string
	rule    Rule
}

func NewGuard(limiter Limiter, metrics Recorder, action string, rule Rule) *Guard {
	return &Guard{limiter: limiter, metrics: metrics, action: action, rule: rule}
}

// Check returns a rate_limited error when subject is over its budget.
// A nil Guard or a non-positive limit allows everything.
func (g *Guard) Check(ctx context.Context, subject string) error {
	if g == nil || g.limiter == nil || g.rule.Limit <= 0 {
		return nil
	}
	ok, err := g.limiter.Allow(ctx, g.action+":"+subject, g.rule.Window, g.rule.Limit)
	if err != nil {
		log.Warn().Err(err).Str("action", g.action).Str("subject", subject).Msg("rate limiter unavailable, allowing request")
		if g.metrics != nil {
			g.metrics.RecordLimiterError()
		}
		return nil
	}
	if !ok {
		if g.metrics != nil {
			g.metrics.RecordRateLimited(g.action)
		}
		return apperr.RateLimited("too many %s requests, limit is %d per %s", g.action, g.rule.Limit, g.rule.Window)
	}
	return nil
}
