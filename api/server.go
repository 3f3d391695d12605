// Package api exposes the search and city screens over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"city-weather/logger"
)

// Config holds the HTTP server settings
type Config struct {
	Port            int
	Env             string
	ShutdownTimeout time.Duration
}

// Server represents the API server
type Server struct {
	server     *http.Server
	router     *gin.Engine
	handler    *Handler
	middleware *Middleware
	config     Config
	logger     logger.Logger
}

// NewServer creates a new API server with its routes registered
func NewServer(loader CityLoader, searcher CitySearcher, locator Locator, cfg Config, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router:     gin.New(),
		handler:    NewHandler(loader, searcher, locator, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.WithField("component", "api_server"),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.middleware.Recovery())
	s.router.Use(s.middleware.RequestID())
	s.router.Use(s.middleware.Logging())
	s.router.Use(s.middleware.CORS())

	s.router.GET("/health", s.handler.HealthCheck)
	s.router.GET("/", s.handler.Home)
	s.router.GET("/locate", s.handler.Locate)
	s.router.GET("/city/:name", s.handler.City)
	s.router.GET("/api/search", s.handler.Search)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not Found",
			Message: fmt.Sprintf("Route %s not found", c.Request.URL.Path),
		})
	})
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Infof("Starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting up to the configured timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
