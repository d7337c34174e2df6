package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"load-optimizer/internal/api"
	"load-optimizer/internal/cache"
	"load-optimizer/internal/config"
	"load-optimizer/internal/metrics"
	"load-optimizer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	metrics.RegisterDefault()

	// Initialize services
	optimizerService := service.NewOptimizerService(cfg.MaxOrders, cfg.MaxWindowDays,
		service.WithCache(newCache(cfg)))

	app := api.NewApp(optimizerService, api.Options{
		BodyLimit:      cfg.BodyLimit,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		_ = app.Shutdown()
	}()

	log.Printf("SmartLoad API starting on port %s (max_orders=%d max_window_days=%d)...\n",
		cfg.Port, cfg.MaxOrders, cfg.MaxWindowDays)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCache prefers Redis when configured and falls back to an in-process LRU.
func newCache(cfg config.Config) cache.Cache {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL)
		if err == nil {
			log.Println("Result cache: redis")
			return rc
		}
		log.Printf("Redis unavailable, using in-memory cache: %v", err)
	}
	log.Printf("Result cache: memory (size=%d ttl=%s)", cfg.CacheSize, cfg.CacheTTL)
	return cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)
}
