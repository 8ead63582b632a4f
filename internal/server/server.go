// Package server wires the auth service, handlers and middleware into an
// HTTP server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

// shutdownTimeout bounds how long in-flight requests may finish on shutdown.
const shutdownTimeout = 10 * time.Second

// basicAuthExcluded lists /api/v1 paths that skip Basic authentication.
var basicAuthExcluded = []string{"/api/v1/health"}

// Server is the assembled HTTP server.
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// New wires the session service, Basic auth resolver and handlers over the
// given user store.
func New(logger *slog.Logger, users storage.UserStore, addr, version string) *Server {
	service := auth.NewService(logger, users)
	resolver := auth.NewBasicAuth(logger, users)

	authHandler := handlers.NewAuthHandler(logger, service)
	meHandler := handlers.NewMeHandler(logger)
	healthHandler := handlers.NewHealthHandler(logger, version)

	// Session routes: cookie transport, open access.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", authHandler.Index)
	mux.HandleFunc("POST /users", authHandler.Register)
	mux.HandleFunc("POST /sessions", authHandler.Login)
	mux.HandleFunc("DELETE /sessions", authHandler.Logout)
	mux.HandleFunc("GET /profile", authHandler.Profile)
	mux.HandleFunc("POST /reset_password", authHandler.RequestReset)
	mux.HandleFunc("PUT /reset_password", authHandler.UpdatePassword)

	// API routes: Basic auth, with health excluded.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/v1/users/me", meHandler.Me)
	apiMux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	basicAuth := middleware.BasicAuthMiddleware(logger, resolver, basicAuthExcluded)
	mux.Handle("/api/v1/", basicAuth(apiMux))

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger)(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
