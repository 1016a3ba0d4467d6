package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ride-booking/internal/api/middleware"
	"ride-booking/internal/api/routes"
	"ride-booking/internal/config"
	"ride-booking/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server owns its router and route table; nothing is registered globally.
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	limiter ratelimit.RateLimiter
	routes  []routes.Route
}

// New builds a server. deps.Limiter may be nil to disable rate limiting.
// Forwarding headers are honoured only from cfg.TrustedProxies.
func New(cfg *config.Config, deps routes.Dependencies) (*Server, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if deps.Limiter != nil {
		router.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}

	table := routes.Table(deps)
	routes.Register(router, table)

	return &Server{
		cfg:     cfg,
		router:  router,
		limiter: deps.Limiter,
		routes:  table,
	}, nil
}

func corsConfig(allowedOrigins []string) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	// Wildcard origin cannot be combined with credentials
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}

	return corsConfig
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Routes returns the registered route table.
func (s *Server) Routes() []routes.Route {
	return s.routes
}

// Run serves on the configured port until ctx is cancelled, then drains
// in-flight requests for up to cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			log.WithError(err).Warn("Failed to close rate limiter")
		}
	}

	return nil
}
