package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ride-booking/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RateLimitMiddleware rejects requests over the client's budget with 429.
// A failing limiter lets the request through.
func RateLimitMiddleware(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)
		endpoint := getEndpointID(c)

		allowed, resetTime, err := limiter.Allow(c.Request.Context(), clientID, endpoint)
		if err != nil {
			log.WithError(err).WithField("endpoint", endpoint).Warn("Rate limiter unavailable")
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		setRateLimitHeaders(c, limiter.Limit(clientID, endpoint), allowed, resetTime)

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":    fmt.Sprintf("Too many requests. Try again in %v", resetTime.Round(time.Millisecond)),
				"error":      "Rate limit exceeded",
				"code":       "RATE_LIMIT_EXCEEDED",
				"retryAfter": retryAfterSeconds(resetTime),
			})
			return
		}

		c.Next()
	}
}

// getClientID keys the budget on the peer address as resolved by gin.
// Forwarding headers only count when the peer is a configured trusted proxy,
// so a client cannot pick a fresh bucket per request.
func getClientID(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// getEndpointID uses the matched route template so that /api/fleet-status/EV-001
// and /api/fleet-status/EV-002 share a bucket.
func getEndpointID(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	return c.Request.Method + ":" + path
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func setRateLimitHeaders(c *gin.Context, limit ratelimit.RateLimit, allowed bool, resetTime time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit.RequestsPerMinute))
	c.Header("X-RateLimit-Window", strconv.Itoa(int(limit.WindowSize.Seconds())))
	c.Header("X-RateLimit-Burst", strconv.Itoa(limit.BurstSize))

	if !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(resetTime)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetTime).Unix(), 10))
	}
}
