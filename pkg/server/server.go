// Package server provides the admin HTTP server for the creditgate daemon.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"atlas-hq/creditgate/pkg/budget"
	"atlas-hq/creditgate/pkg/config"
	"atlas-hq/creditgate/pkg/server/middleware"
	"atlas-hq/creditgate/pkg/telemetry/health"
	"atlas-hq/creditgate/pkg/telemetry/metrics"
)

// VersionInfo carries build metadata for the version endpoint.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the admin HTTP server. It exposes health probes, metrics, and
// read-only budget state; it never fronts business traffic.
type Server struct {
	config       *config.AdminConfig
	manager      *budget.Manager
	checker      *health.Checker
	version      VersionInfo
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the admin server. The manager's health checks are
// registered on the given checker by the caller.
func NewServer(cfg *config.AdminConfig, manager *budget.Manager, checker *health.Checker, version VersionInfo) *Server {
	return &Server{
		config:  cfg,
		manager: manager,
		checker: checker,
		version: version,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddress,
		Handler: s.setupRoutes(),
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting admin server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("admin server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", s.checker.LivenessHandler())
	mux.Handle("/ready", s.checker.ReadinessHandler())
	mux.Handle("/version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/v1/balance", s.balanceHandler())
	mux.Handle("/v1/costs", s.costsHandler())
	mux.Handle("/v1/refusals", s.refusalsHandler())
	mux.Handle("/v1/admission", s.admissionHandler())

	var handler http.Handler = mux
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
