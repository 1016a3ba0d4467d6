package ratelimit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestNewRedisRateLimiter(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	limiter := NewRedisRateLimiter(client, config)

	assert.NotNil(t, limiter)
	assert.Equal(t, config, limiter.config)
	assert.NotNil(t, limiter.customLimits)
}

func TestRedisRateLimiter_Allow_BasicFunctionality(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["book_ride"] = RateLimit{
		RequestsPerMinute: 5,
		BurstSize:         3,
		WindowSize:        time.Minute,
	}

	limiter := NewRedisRateLimiter(client, config)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, resetTime, err := limiter.Allow(ctx, "test-client", "POST:/api/book-ride")
		assert.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed", i+1)
		assert.Equal(t, time.Duration(0), resetTime)
	}

	allowed, resetTime, err := limiter.Allow(ctx, "test-client", "POST:/api/book-ride")
	assert.NoError(t, err)
	assert.False(t, allowed, "4th request should be blocked")
	assert.Greater(t, resetTime, time.Duration(0))
	assert.LessOrEqual(t, resetTime, time.Minute)
}

func TestRedisRateLimiter_Allow_WindowReset(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 10,
		BurstSize:         1,
		WindowSize:        time.Second,
	}

	limiter := NewRedisRateLimiter(client, config)
	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "test-client", "GET:/unknown")
	assert.NoError(t, err)
	assert.True(t, allowed)

	now = now.Add(400 * time.Millisecond)
	allowed, resetTime, err := limiter.Allow(ctx, "test-client", "GET:/unknown")
	assert.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 600*time.Millisecond, resetTime)

	now = now.Add(600 * time.Millisecond)
	allowed, _, err = limiter.Allow(ctx, "test-client", "GET:/unknown")
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Allow_DifferentClients(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{
		RequestsPerMinute: 5,
		BurstSize:         1,
		WindowSize:        time.Minute,
	}

	limiter := NewRedisRateLimiter(client, config)
	ctx := context.Background()

	allowed1, _, err := limiter.Allow(ctx, "client1", "GET:/")
	assert.NoError(t, err)
	assert.True(t, allowed1)

	allowed2, _, err := limiter.Allow(ctx, "client2", "GET:/")
	assert.NoError(t, err)
	assert.True(t, allowed2)

	allowed1, _, err = limiter.Allow(ctx, "client1", "GET:/")
	assert.NoError(t, err)
	assert.False(t, allowed1)

	allowed2, _, err = limiter.Allow(ctx, "client2", "GET:/")
	assert.NoError(t, err)
	assert.False(t, allowed2)
}

func TestRedisRateLimiter_Allow_DisabledLimiter(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.Enabled = false

	limiter := NewRedisRateLimiter(client, config)

	for i := 0; i < 200; i++ {
		allowed, resetTime, err := limiter.Allow(context.Background(), "client", "POST:/api/book-ride")
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, time.Duration(0), resetTime)
	}
	assert.Equal(t, int64(0), limiter.GetStats().TotalRequests)
}

func TestRedisRateLimiter_Allow_RedisDown(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	cleanup()

	limiter := NewRedisRateLimiter(client, DefaultConfig())

	allowed, _, err := limiter.Allow(context.Background(), "client", "GET:/")
	assert.Error(t, err)
	assert.False(t, allowed)
}

func seedCustomLimits(t *testing.T, client *redis.Client, clientID string, limits map[string]RateLimit) {
	data, err := json.Marshal(limits)
	require.NoError(t, err)
	key := DefaultConfig().RedisKeyPrefix + "custom:" + clientID
	require.NoError(t, client.Set(context.Background(), key, data, 0).Err())
}

func TestRedisRateLimiter_LoadCustomLimits(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	customLimit := RateLimit{RequestsPerMinute: 10, BurstSize: 2, WindowSize: time.Minute}
	seedCustomLimits(t, client, "ip:203.0.113.7", map[string]RateLimit{"POST:/api/book-ride": customLimit})
	// Unparseable entries are skipped
	require.NoError(t, client.Set(context.Background(), DefaultConfig().RedisKeyPrefix+"custom:broken", "{", 0).Err())

	limiter := NewRedisRateLimiter(client, DefaultConfig())
	require.NoError(t, limiter.LoadCustomLimits(context.Background()))

	assert.Equal(t, customLimit, limiter.Limit("ip:203.0.113.7", "POST:/api/book-ride"))
	assert.Equal(t, DefaultConfig().DefaultLimits["book_ride"], limiter.Limit("ip:198.51.100.1", "POST:/api/book-ride"))
	assert.Equal(t, DefaultConfig().DefaultLimits["fleet"], limiter.Limit("ip:203.0.113.7", "GET:/api/fleet-status"))
	assert.Equal(t, 1, limiter.GetStats().CustomClients)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "ip:203.0.113.7", "POST:/api/book-ride")
		assert.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed with custom limit", i+1)
	}

	allowed, _, err := limiter.Allow(ctx, "ip:203.0.113.7", "POST:/api/book-ride")
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisRateLimiter_LoadCustomLimits_RedisDown(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	cleanup()

	limiter := NewRedisRateLimiter(client, DefaultConfig())
	assert.Error(t, limiter.LoadCustomLimits(context.Background()))
	assert.Equal(t, 0, limiter.GetStats().CustomClients)
}

func TestRedisRateLimiter_GetStats(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["default"] = RateLimit{RequestsPerMinute: 1, BurstSize: 1, WindowSize: time.Minute}
	limiter := NewRedisRateLimiter(client, config)
	ctx := context.Background()

	stats := limiter.GetStats()
	assert.Equal(t, "redis", stats.Backend)
	assert.Equal(t, int64(0), stats.TotalRequests)
	assert.Equal(t, int64(0), stats.BlockedRequests)

	limiter.Allow(ctx, "client1", "GET:/")
	limiter.Allow(ctx, "client1", "GET:/")
	limiter.Allow(ctx, "client2", "GET:/")

	stats = limiter.GetStats()
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.BlockedRequests)
	assert.InDelta(t, 33.3, stats.BlockedPercent, 0.1)
}

func TestRedisRateLimiter_ConcurrentAccess(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	config := DefaultConfig()
	config.DefaultLimits["book_ride"] = RateLimit{
		RequestsPerMinute: 100,
		BurstSize:         10,
		WindowSize:        time.Minute,
	}

	limiter := NewRedisRateLimiter(client, config)

	const workers = 8
	const requestsPerWorker = 5

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < requestsPerWorker; j++ {
				ok, _, err := limiter.Allow(context.Background(), "shared-client", "POST:/api/book-ride")
				if err == nil && ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// All workers share one client budget
	assert.Equal(t, 10, allowed)
}
