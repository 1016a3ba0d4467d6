package ratelimit

import (
	"context"
	"time"
)

// RateLimiter defines the interface for rate limiting functionality
type RateLimiter interface {
	// Allow consumes one request for the client on the endpoint. When the
	// request is rejected the duration says how long until it may retry.
	Allow(ctx context.Context, clientID string, endpoint string) (bool, time.Duration, error)
	// Limit returns the limit that applies to the client on the endpoint
	Limit(clientID string, endpoint string) RateLimit
	GetStats() RateLimiterStats
	Close() error
}

// RateLimit defines the configuration for rate limiting
type RateLimit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

// RateLimiterStats provides statistics about rate limiting
type RateLimiterStats struct {
	TotalRequests   int64   `json:"totalRequests"`
	BlockedRequests int64   `json:"blockedRequests"`
	BlockedPercent  float64 `json:"blockedPercent"`
	CustomClients   int     `json:"customClients"`
	Backend         string  `json:"backend"`
}
