package handlers

import (
	"net/http"

	"ride-booking/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

type RateLimitHandler struct {
	limiter ratelimit.RateLimiter
}

// NewRateLimitHandler wraps the active limiter; limiter is nil when rate
// limiting is disabled.
func NewRateLimitHandler(limiter ratelimit.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

// GetStats reports request and rejection counters of this instance
func (h *RateLimitHandler) GetStats(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"stats":   h.limiter.GetStats(),
	})
}
