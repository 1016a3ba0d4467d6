package handlers

import (
	"net/http"
	"time"

	"ride-booking/internal/repository"
	"ride-booking/pkg/redis"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	fleet       *repository.FleetRegistry
	redisClient *redis.Client
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

// NewHealthHandler builds a health handler. redisClient may be nil when the
// server runs with the in-memory rate limiter.
func NewHealthHandler(fleet *repository.FleetRegistry, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		fleet:       fleet,
		redisClient: redisClient,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Timestamp: time.Now(),
		Services:  make(map[string]interface{}),
	}

	response.Services["fleet"] = map[string]interface{}{
		"service":  "fleet",
		"healthy":  true,
		"vehicles": h.fleet.Count(),
	}

	redisStatus := h.checkRedis()
	response.Services["redis"] = redisStatus

	if redisStatus["healthy"].(bool) {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

func (h *HealthHandler) checkRedis() map[string]interface{} {
	status := map[string]interface{}{
		"service": "redis",
		"healthy": false,
	}

	if h.redisClient == nil {
		status["healthy"] = true
		status["message"] = "Not configured"
		return status
	}

	healthStatus := h.redisClient.HealthCheck()
	status["healthy"] = healthStatus.IsConnected
	status["connectionInfo"] = healthStatus.ConnectionInfo
	status["responseTime"] = healthStatus.ResponseTime.String()
	status["lastPing"] = healthStatus.LastPing

	if healthStatus.Error != "" {
		status["error"] = healthStatus.Error
	}

	status["connectionStats"] = h.redisClient.GetConnectionStats()

	return status
}
