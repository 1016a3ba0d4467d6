package ratelimit

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// tokenBucket refills continuously at RequestsPerMinute up to BurstSize.
type tokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// MemoryRateLimiter implements RateLimiter using in-memory storage. Limits are
// per process, so it is meant for single-instance deployments and tests.
type MemoryRateLimiter struct {
	config          *Config
	totalRequests   int64
	blockedRequests int64
	buckets         map[string]*tokenBucket // clientID:endpoint -> bucket
	mu              sync.Mutex
	stop            chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
		now:     time.Now,
	}

	go limiter.cleanupIdleBuckets()

	return limiter
}

// Allow checks if a request should be allowed based on rate limits
func (r *MemoryRateLimiter) Allow(_ context.Context, clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.totalRequests, 1)

	limit := r.config.LimitFor(endpoint)

	r.mu.Lock()
	defer r.mu.Unlock()

	key := clientID + ":" + endpoint
	now := r.now()

	bucket, exists := r.buckets[key]
	if !exists {
		bucket = &tokenBucket{
			capacity:   float64(limit.BurstSize),
			tokens:     float64(limit.BurstSize),
			refillRate: float64(limit.RequestsPerMinute) / 60,
			lastRefill: now,
		}
		r.buckets[key] = bucket
	}

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = math.Min(bucket.capacity, bucket.tokens+elapsed*bucket.refillRate)
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0, nil
	}

	atomic.AddInt64(&r.blockedRequests, 1)

	if bucket.refillRate <= 0 {
		return false, limit.WindowSize, nil
	}
	wait := time.Duration((1 - bucket.tokens) / bucket.refillRate * float64(time.Second))
	return false, wait, nil
}

// Limit returns the limit that applies to the endpoint. The in-memory limiter
// has no per-client overrides.
func (r *MemoryRateLimiter) Limit(_ string, endpoint string) RateLimit {
	return r.config.LimitFor(endpoint)
}

// GetStats returns current rate limiter statistics
func (r *MemoryRateLimiter) GetStats() RateLimiterStats {
	return buildStats("memory", atomic.LoadInt64(&r.totalRequests), atomic.LoadInt64(&r.blockedRequests), 0)
}

// Close stops the cleanup goroutine
func (r *MemoryRateLimiter) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	return nil
}

func (r *MemoryRateLimiter) cleanupIdleBuckets() {
	interval := r.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for key, bucket := range r.buckets {
				if now.Sub(bucket.lastRefill) > time.Hour {
					delete(r.buckets, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

func buildStats(backend string, total, blocked int64, customClients int) RateLimiterStats {
	stats := RateLimiterStats{
		Backend:         backend,
		TotalRequests:   total,
		BlockedRequests: blocked,
		CustomClients:   customClients,
	}
	if total > 0 {
		stats.BlockedPercent = float64(blocked) / float64(total) * 100
	}
	return stats
}
