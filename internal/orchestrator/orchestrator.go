package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tarifaninja/faresearch/internal/models"
	"github.com/tarifaninja/faresearch/internal/providers"
	"github.com/tarifaninja/faresearch/internal/ratelimit"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.ProviderLimiter
}

// Orchestrator fans a query out to every configured real provider, tolerating
// individual failures, and falls back to the synthetic provider when no real
// offers come back. The caller cannot tell the two cases apart except by each
// offer's provider field.
type Orchestrator struct {
	providers []providers.Provider
	fallback  providers.Provider
	config    Config
}

func New(real []providers.Provider, fallback providers.Provider, config Config) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Orchestrator{
		providers: real,
		fallback:  fallback,
		config:    config,
	}
}

// Search never fails: provider errors are logged and dropped, and the fallback
// provider guarantees a non-empty result once validation has passed upstream.
func (o *Orchestrator) Search(ctx context.Context, q models.Query) []models.Offer {
	searchCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	// One result slot per provider keeps concatenation in registration
	// order, independent of completion order.
	results := make([][]models.Offer, len(o.providers))
	var wg sync.WaitGroup

	for i, p := range o.providers {
		wg.Add(1)
		go func(i int, p providers.Provider) {
			defer wg.Done()

			if o.config.RateLimiter != nil {
				if err := o.config.RateLimiter.Wait(searchCtx, p.Name()); err != nil {
					log.Printf("provider %s rate limit wait failed: %v", p.Name(), err)
					return
				}
			}

			offers, err := o.searchWithRetry(searchCtx, p, q)
			if err != nil {
				log.Printf("provider %s failed: %v", p.Name(), err)
				return
			}
			results[i] = offers
		}(i, p)
	}
	wg.Wait()

	var all []models.Offer
	for _, offers := range results {
		all = append(all, offers...)
	}
	if len(all) > 0 {
		return all
	}

	offers, err := o.fallback.Search(ctx, q)
	if err != nil {
		// The synthetic provider has no failure path; guard anyway.
		log.Printf("fallback provider %s failed: %v", o.fallback.Name(), err)
		return nil
	}
	return offers
}

func (o *Orchestrator) searchWithRetry(ctx context.Context, p providers.Provider, q models.Query) ([]models.Offer, error) {
	var lastErr error

	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 && len(o.config.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(o.config.RetryDelays) {
				delayIdx = len(o.config.RetryDelays) - 1
			}
			select {
			case <-time.After(o.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		offers, err := p.Search(ctx, q)
		if err == nil {
			return offers, nil
		}
		lastErr = err
	}

	return nil, lastErr
}
