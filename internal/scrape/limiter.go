package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a per-host rate limiter that backs off on 429s and
// recovers gradually on success. The rate stays within [initial/4, initial*2].
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	host    string
	current rate.Limit
	floor   rate.Limit
	ceiling rate.Limit
}

// NewAdaptiveLimiter creates a limiter starting at perSecond.
func NewAdaptiveLimiter(host string, perSecond rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(perSecond, burst),
		host:    host,
		current: perSecond,
		floor:   perSecond / 4,
		ceiling: perSecond * 2,
	}
}

// Wait blocks until a request may be sent.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess raises the rate by a fifth.
func (a *AdaptiveLimiter) OnSuccess() {
	a.set(a.Limit() * 1.2)
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	l := a.set(a.Limit() / 2)
	zap.L().Warn("scrape: rate limited, slowing down",
		zap.String("host", a.host),
		zap.Float64("rate", float64(l)),
	)
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *AdaptiveLimiter) set(l rate.Limit) rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = min(max(l, a.floor), a.ceiling)
	a.limiter.SetLimit(a.current)
	return a.current
}
