package ratelimit

import (
	"strings"
	"time"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Limits per endpoint category, "default" is the fallback
	DefaultLimits map[string]RateLimit `json:"defaultLimits"`

	// Endpoint ("METHOD:/route") to category. A trailing * matches any suffix.
	Categories map[string]string `json:"categories"`

	// Redis key prefix for rate limiting data
	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// How often idle in-memory buckets are dropped
	CleanupInterval time.Duration `json:"cleanupInterval"`

	Enabled bool `json:"enabled"`
}

// DefaultConfig returns a default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultLimits: map[string]RateLimit{
			"book_ride": {RequestsPerMinute: 30, BurstSize: 10, WindowSize: time.Minute},
			"fleet":     {RequestsPerMinute: 120, BurstSize: 30, WindowSize: time.Minute},
			"health":    {RequestsPerMinute: 1000, BurstSize: 100, WindowSize: time.Minute},
			"default":   {RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute},
		},
		Categories: map[string]string{
			"POST:/api/book-ride":     "book_ride",
			"GET:/api/fleet-status":   "fleet",
			"GET:/api/fleet-status/*": "fleet",
			"GET:/api/health":         "health",
		},
		RedisKeyPrefix:  "ratelimit:",
		CleanupInterval: 5 * time.Minute,
		Enabled:         true,
	}
}

// Category maps an endpoint identifier to its rate limit category
func (c *Config) Category(endpoint string) string {
	if category, exists := c.Categories[endpoint]; exists {
		return category
	}

	for pattern, category := range c.Categories {
		if matchesPattern(endpoint, pattern) {
			return category
		}
	}

	return "default"
}

// LimitFor resolves the configured limit for an endpoint
func (c *Config) LimitFor(endpoint string) RateLimit {
	if limit, exists := c.DefaultLimits[c.Category(endpoint)]; exists {
		return limit
	}

	if limit, exists := c.DefaultLimits["default"]; exists {
		return limit
	}

	return RateLimit{
		RequestsPerMinute: 60,
		BurstSize:         15,
		WindowSize:        time.Minute,
	}
}

// matchesPattern checks if a key matches a pattern with wildcards
func matchesPattern(key, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	}
	return key == pattern
}
