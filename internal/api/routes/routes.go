package routes

import (
	"net/http"

	"ride-booking/internal/api/handlers"
	"ride-booking/internal/repository"
	"ride-booking/internal/services"
	"ride-booking/pkg/ratelimit"
	"ride-booking/pkg/redis"

	"github.com/gin-gonic/gin"
)

// Route is one entry of the server's route table.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Dependencies are what the handlers need. RedisClient and Limiter may be nil.
type Dependencies struct {
	Fleet       *repository.FleetRegistry
	RedisClient *redis.Client
	Limiter     ratelimit.RateLimiter
}

// Table builds the full route table of the service.
func Table(deps Dependencies) []Route {
	bookingService := services.NewBookingService(deps.Fleet)

	bookingHandler := handlers.NewBookingHandler(bookingService)
	fleetHandler := handlers.NewFleetHandler(bookingService)
	healthHandler := handlers.NewHealthHandler(deps.Fleet, deps.RedisClient)
	rateLimitHandler := handlers.NewRateLimitHandler(deps.Limiter)

	return []Route{
		{http.MethodGet, "/", handlers.Home},
		{http.MethodPost, "/api/book-ride", bookingHandler.BookRide},
		{http.MethodGet, "/api/fleet-status", fleetHandler.GetFleetStatus},
		{http.MethodGet, "/api/fleet-status/:id", fleetHandler.GetVehicle},
		{http.MethodGet, "/api/health", healthHandler.HealthCheck},
		{http.MethodGet, "/api/rate-limit/stats", rateLimitHandler.GetStats},
	}
}

// Register adds every route of the table to the router.
func Register(router gin.IRoutes, table []Route) {
	for _, r := range table {
		router.Handle(r.Method, r.Path, r.Handler)
	}
}
