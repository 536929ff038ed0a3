package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tarifaninja/faresearch/internal/cache"
	"github.com/tarifaninja/faresearch/internal/config"
	"github.com/tarifaninja/faresearch/internal/handler"
	"github.com/tarifaninja/faresearch/internal/orchestrator"
	"github.com/tarifaninja/faresearch/internal/providers"
	"github.com/tarifaninja/faresearch/internal/ratelimit"
)

func main() {
	cfg := config.Load()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	var real []providers.Provider
	if cfg.AmadeusConfigured() {
		real = append(real, providers.NewAmadeus(
			cfg.AmadeusBase, cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.DefaultCurrency))
	}
	if cfg.KiwiConfigured() {
		real = append(real, providers.NewKiwi(
			cfg.TequilaBase, cfg.TequilaAPIKey, cfg.DefaultCurrency))
	}
	fallback := providers.NewSimulated(cfg.DefaultCurrency)
	log.Printf("registered %d real providers (amadeus=%t kiwi=%t)",
		len(real), cfg.AmadeusConfigured(), cfg.KiwiConfigured())

	limiter := ratelimit.New(10, 20)
	limiter.SetLimit("Amadeus", 5, 10)
	limiter.SetLimit("Kiwi", 10, 15)

	orch := orchestrator.New(real, fallback, orchestrator.Config{
		Timeout:    cfg.SearchTimeout,
		MaxRetries: 2,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			300 * time.Millisecond,
		},
		RateLimiter: limiter,
	})

	resultCache := cache.Cache(cache.NewNoOpCache())
	cacheEnabled := false
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.SearchTTL)
		if err != nil {
			log.Printf("redis cache unavailable, continuing without cache: %v", err)
		} else {
			resultCache = redisCache
			cacheEnabled = true
			log.Printf("redis cache enabled (TTL: %v)", cfg.SearchTTL)
		}
	} else {
		log.Println("cache disabled")
	}

	searchHandler := handler.NewSearchHandler(orch, resultCache)

	e.POST("/search", searchHandler.Search)
	e.GET("/health", handler.Health(cfg.AmadeusConfigured(), cfg.KiwiConfigured(), cacheEnabled))

	log.Printf("starting fare search server on port %s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
