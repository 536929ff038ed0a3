package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter keeps one token bucket per upstream provider so a burst of
// searches cannot hammer any single travel API past its quota.
type ProviderLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter

	defaultRPS   float64
	defaultBurst int
}

func New(requestsPerSecond float64, burst int) *ProviderLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &ProviderLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRPS:   requestsPerSecond,
		defaultBurst: burst,
	}
}

// SetLimit overrides the default bucket for one provider.
func (p *ProviderLimiter) SetLimit(provider string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiters[provider] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the provider's bucket permits a call or ctx is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.limiter(provider).Wait(ctx)
}

func (p *ProviderLimiter) limiter(provider string) *rate.Limiter {
	p.mu.RLock()
	l, ok := p.limiters[provider]
	p.mu.RUnlock()
	if ok {
		return l
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok = p.limiters[provider]; ok {
		return l
	}
	l = rate.NewLimiter(rate.Limit(p.defaultRPS), p.defaultBurst)
	p.limiters[provider] = l
	return l
}
