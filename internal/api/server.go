// Package api provides the HTTP planning service for soltoolkit-sdk.
// The server exposes dispersal planning via REST endpoints, allowing tooling
// to request bundle plans without linking the library: it runs lookups,
// packs bundles, and returns the plan as JSON, leaving signing and
// submission to the caller.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/agustinustheo/soltoolkit-sdk/internal/api/handlers"
	"github.com/agustinustheo/soltoolkit-sdk/internal/batching"
	"github.com/agustinustheo/soltoolkit-sdk/internal/logging"
	"github.com/agustinustheo/soltoolkit-sdk/internal/version"
	"github.com/gin-gonic/gin"
)

// Server represents the dispersal planning API server.
type Server struct {
	orchestrator *batching.Orchestrator
	httpServer   *http.Server
	bindAddr     string
	bindPort     int
}

// NewServer creates a new planning API server instance over a validated
// configuration.
func NewServer(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}

	orchestrator, err := batching.NewOrchestrator(config.Ledger, config.Batch)
	if err != nil {
		return nil, err
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		orchestrator: orchestrator,
		bindAddr:     config.BindAddr,
		bindPort:     config.BindPort,
	}, nil
}

// Start starts the planning API server.
func (s *Server) Start() error {
	logging.Info("Starting planning API server on %s:%d", s.bindAddr, s.bindPort)

	// Create Gin router
	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	// Capture stdlib log output from net/http and friends
	logging.RedirectStandardLog(logging.NewLevelWriter("WARN", "stdlog"))

	// Add middleware
	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	// Setup routes
	s.setupRoutes(router)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.bindAddr, s.bindPort),
		Handler: router,
		// Timeouts for production
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Plans may wait on many lookups
		IdleTimeout:  60 * time.Second,
	}

	// Test binding first to catch errors immediately
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.httpServer.Addr, err)
	}
	listener.Close() // Close the test listener

	// Start server in goroutine now that we know binding works
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("Planning API server started successfully")
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down planning API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

var startTime = time.Now() // Track server start time for uptime calculation

// setupRoutes registers all planning endpoints on the router.
func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/health", handlers.HandleHealth(version.SDKVersion, startTime))

	v1 := router.Group("/v1")
	{
		v1.POST("/plan", handlers.HandlePlan(s.orchestrator))
		v1.POST("/plan/transfers", handlers.HandleTransferPlan(s.orchestrator))
		v1.POST("/plan/provisioning", handlers.HandleProvisioningPlan(s.orchestrator))
	}
}
