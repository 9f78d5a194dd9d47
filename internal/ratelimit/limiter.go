// Package ratelimit provides per-key token bucket rate limiting for MCP
// tools. Buckets are metered by cost, so a long simulation drains more of
// its budget than a listing call.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a call exceeds its budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter implements a per-key token bucket. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64 // bucket capacity and initial fill
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter refilling at rate tokens per second up to
// burst tokens.
func NewLimiter(rate, burst float64) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// refill returns the bucket for key with tokens accrued since its last use.
// Callers must hold l.mu.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens += l.rate * elapsed
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.lastCheck = now
	}
	return b
}

// Allow reports whether a unit-cost request for key may proceed.
func (l *Limiter) Allow(key string) bool {
	return l.AllowN(key, 1)
}

// AllowN reports whether a request costing cost tokens may proceed, and
// debits the bucket if so. A cost larger than the burst never succeeds.
func (l *Limiter) AllowN(key string, cost float64) bool {
	if cost <= 0 {
		cost = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < cost {
		return false
	}
	b.tokens -= cost
	return true
}

// Remaining returns the tokens currently available for key.
func (l *Limiter) Remaining(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refill(key).tokens
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default per-tool limiters. prefgrow_simulate
// is metered in simulation steps; the others count calls.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"prefgrow_simulate": NewLimiter(1_000_000, 20_000_000), // 1M steps/sec, burst 20M steps
		"prefgrow_runs":     NewLimiter(1.0, 10),               // 60/minute, burst 10
		"prefgrow_run":      NewLimiter(1.0, 10),
		"prefgrow_presets":  NewLimiter(1.0, 10),
	}
}

// CheckLimit debits cost from the named tool's limiter. Tools without a
// configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string, cost float64) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.AllowN(toolName, cost) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}
	return nil
}
