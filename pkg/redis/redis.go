package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ride-booking/internal/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Client wraps a go-redis client with connection health tracking. go-redis
// redials on its own, so the wrapper only observes and reports.
type Client struct {
	client         *redis.Client
	connectionInfo string
	mu             sync.RWMutex
	isConnected    bool
	ctx            context.Context
	cancel         context.CancelFunc
}

type HealthStatus struct {
	IsConnected    bool          `json:"isConnected"`
	LastPing       time.Time     `json:"lastPing"`
	ResponseTime   time.Duration `json:"responseTime"`
	ConnectionInfo string        `json:"connectionInfo"`
	Error          string        `json:"error,omitempty"`
}

// NewClient creates a new Redis client with connection pooling
func NewClient(cfg config.RedisConfig) *Client {
	opt := options(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		client:         redis.NewClient(opt),
		connectionInfo: opt.Addr,
		ctx:            ctx,
		cancel:         cancel,
	}

	client.HealthCheck()
	go client.healthCheckLoop(30 * time.Second)

	return client
}

func options(cfg config.RedisConfig) *redis.Options {
	opt := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			log.Warnf("Failed to parse Redis URL: %v, falling back to host:port", err)
		} else {
			opt = parsed
		}
	}

	opt.PoolSize = cfg.PoolSize
	opt.MinIdleConns = cfg.MinIdleConns
	opt.MaxRetries = cfg.MaxRetries
	opt.MinRetryBackoff = cfg.RetryDelay
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	opt.PoolTimeout = cfg.PoolTimeout

	return opt
}

// GetClient returns the underlying go-redis client
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// IsConnected returns the result of the last ping
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// HealthCheck pings Redis and returns detailed status
func (c *Client) HealthCheck() HealthStatus {
	status := HealthStatus{
		ConnectionInfo: c.connectionInfo,
	}

	ctx, cancel := context.WithTimeout(c.ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := c.client.Ping(ctx).Err()
	status.ResponseTime = time.Since(start)
	status.LastPing = time.Now()
	status.IsConnected = err == nil
	if err != nil {
		status.Error = err.Error()
	}

	c.mu.Lock()
	wasConnected := c.isConnected
	c.isConnected = status.IsConnected
	c.mu.Unlock()

	switch {
	case status.IsConnected && !wasConnected:
		log.Infof("Redis connected at %s", c.connectionInfo)
	case !status.IsConnected && wasConnected:
		log.Warnf("Redis connection lost at %s: %s", c.connectionInfo, status.Error)
	}

	return status
}

func (c *Client) healthCheckLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.HealthCheck()
		}
	}
}

// Close stops the health check loop and closes the pool
func (c *Client) Close() error {
	c.cancel()
	return c.client.Close()
}

// GetConnectionStats returns connection pool statistics
func (c *Client) GetConnectionStats() map[string]interface{} {
	stats := c.client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"totalConns":  stats.TotalConns,
		"idleConns":   stats.IdleConns,
		"staleConns":  stats.StaleConns,
		"isConnected": c.IsConnected(),
	}
}
