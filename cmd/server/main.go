package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"ride-booking/internal/api/routes"
	"ride-booking/internal/config"
	"ride-booking/internal/repository"
	"ride-booking/internal/server"
	"ride-booking/pkg/ratelimit"
	"ride-booking/pkg/redis"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource so that deferred cleanup happens before main exits.
func run() error {
	cfg := config.Load()
	cfg.SetupLogging()
	gin.SetMode(cfg.GinMode)

	fleet, err := repository.NewFleetRegistry(repository.DefaultFleet())
	if err != nil {
		return fmt.Errorf("failed to build fleet registry: %w", err)
	}
	log.Infof("Fleet registry loaded with %d vehicles", fleet.Count())

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(cfg.Redis)
		defer redisClient.Close()

		if !redisClient.IsConnected() {
			log.Warn("Redis unreachable at startup, rate limiting fails open until it recovers")
		}
	}

	srv, err := server.New(cfg, routes.Dependencies{
		Fleet:       fleet,
		RedisClient: redisClient,
		Limiter:     newRateLimiter(cfg, redisClient),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newRateLimiter(cfg *config.Config, redisClient *redis.Client) ratelimit.RateLimiter {
	if !cfg.RateLimitEnabled {
		log.Info("Rate limiting disabled")
		return nil
	}

	limitConfig := ratelimit.DefaultConfig()

	if redisClient == nil {
		log.Info("Using in-memory rate limiter")
		return ratelimit.NewMemoryRateLimiter(limitConfig)
	}

	limiter := ratelimit.NewRedisRateLimiter(redisClient.GetClient(), limitConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := limiter.LoadCustomLimits(ctx); err != nil {
		log.WithError(err).Warn("Failed to load custom rate limits")
	}

	log.Info("Using Redis rate limiter")
	return limiter
}
