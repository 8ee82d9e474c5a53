package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget for LLM requests.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
	now         func() time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMinute tokens per rolling minute window.
// A non-positive budget disables limiting.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMinute,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Wait blocks until tokens fit in the current window or ctx is done.
func (t *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	if t.maxPerMin <= 0 {
		return nil
	}
	if tokens > t.maxPerMin {
		return fmt.Errorf("request needs %d tokens, limit is %d per minute", tokens, t.maxPerMin)
	}

	for {
		t.mu.Lock()
		now := t.now()
		if now.Sub(t.windowStart) >= time.Minute {
			t.windowStart = now
			t.used = 0
		}
		if t.used+tokens <= t.maxPerMin {
			t.used += tokens
			t.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(t.windowStart)
		t.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (t *TokenLimiter) GetRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.maxPerMin <= 0 {
		return 0
	}
	if t.now().Sub(t.windowStart) >= time.Minute {
		return t.maxPerMin
	}
	return t.maxPerMin - t.used
}
