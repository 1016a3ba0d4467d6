package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts requests per window and rejects once BurstSize is
// reached. Returns {allowed, milliseconds until the window resets}.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local burst_size = tonumber(ARGV[1])
	local window_size = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local count = tonumber(redis.call('HGET', key, 'count')) or 0
	local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

	if now - window_start >= window_size then
		count = 0
		window_start = now
	end

	local allowed = count < burst_size
	if allowed then
		count = count + 1
	end

	local reset_ms = 0
	if not allowed then
		reset_ms = (window_start + window_size) - now
	end

	redis.call('HSET', key, 'count', count, 'window_start', window_start)
	redis.call('PEXPIRE', key, window_size)

	return {allowed and 1 or 0, reset_ms}
`)

// RedisRateLimiter implements RateLimiter using Redis as the backend so that
// several server instances share one budget per client.
type RedisRateLimiter struct {
	client          *redis.Client
	config          *Config
	totalRequests   int64
	blockedRequests int64
	customLimits    map[string]map[string]RateLimit // clientID -> endpoint -> limit
	mu              sync.RWMutex
	now             func() time.Time
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		client:       client,
		config:       config,
		customLimits: make(map[string]map[string]RateLimit),
		now:          time.Now,
	}
}

// Allow checks if a request should be allowed based on rate limits
func (r *RedisRateLimiter) Allow(ctx context.Context, clientID string, endpoint string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&r.totalRequests, 1)

	limit := r.Limit(clientID, endpoint)
	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, clientID, endpoint)

	result, err := fixedWindowScript.Run(ctx, r.client, []string{key},
		limit.BurstSize,
		limit.WindowSize.Milliseconds(),
		r.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("unexpected script result: %v", result)
	}

	if result[0] != 1 {
		atomic.AddInt64(&r.blockedRequests, 1)
		return false, time.Duration(result[1]) * time.Millisecond, nil
	}

	return true, 0, nil
}

// Limit returns the limit that applies to the client on the endpoint
func (r *RedisRateLimiter) Limit(clientID, endpoint string) RateLimit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if clientLimits, exists := r.customLimits[clientID]; exists {
		if limit, exists := clientLimits[endpoint]; exists {
			return limit
		}
	}
	return r.config.LimitFor(endpoint)
}

// LoadCustomLimits reads per-client overrides provisioned in Redis. Each key
// is RedisKeyPrefix+"custom:"+clientID holding a JSON map of endpoint to limit.
func (r *RedisRateLimiter) LoadCustomLimits(ctx context.Context) error {
	prefix := r.customKey("")
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	loaded := make(map[string]map[string]RateLimit)
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var limits map[string]RateLimit
		if err := json.Unmarshal(data, &limits); err != nil {
			continue
		}

		loaded[strings.TrimPrefix(key, prefix)] = limits
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan custom limits: %w", err)
	}

	r.mu.Lock()
	for clientID, limits := range loaded {
		r.customLimits[clientID] = limits
	}
	r.mu.Unlock()

	return nil
}

// GetStats returns current rate limiter statistics
func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	r.mu.RLock()
	customClients := len(r.customLimits)
	r.mu.RUnlock()

	return buildStats("redis", atomic.LoadInt64(&r.totalRequests), atomic.LoadInt64(&r.blockedRequests), customClients)
}

// Close is a no-op, the Redis client is owned by the caller
func (r *RedisRateLimiter) Close() error {
	return nil
}

func (r *RedisRateLimiter) customKey(clientID string) string {
	return r.config.RedisKeyPrefix + "custom:" + clientID
}
