// ABOUTME: HTTP server wiring routes, auth gates, and graceful shutdown
// ABOUTME: Composes each protected route with its declared required scopes

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/asbp/gatekeeper/internal/auth"
	"github.com/asbp/gatekeeper/internal/store"
)

// Server serves the gatekeeper HTTP API.
type Server struct {
	addr            string
	store           *store.SQLiteStore
	auth            *auth.Service
	logger          *slog.Logger
	shutdownTimeout time.Duration

	httpServer *http.Server
}

// New creates a server around the given store and auth service.
func New(addr string, st *store.SQLiteStore, svc *auth.Service, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Server{
		addr:            addr,
		store:           st,
		auth:            svc,
		logger:          slog.Default().With("component", "server"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/auth", s.handleAuth)

	// Gates, one per required-scope set
	authenticated := auth.Protect(s.auth)
	admin := auth.Protect(s.auth, store.RoleRoot, store.RoleAdmin)
	security := auth.Protect(s.auth, store.RoleRoot, store.RoleAdmin, store.RoleSecurityOfficer)

	mux.Handle("/logout", authenticated(http.HandlerFunc(s.handleLogout)))
	mux.Handle("/users", admin(http.HandlerFunc(s.handleUsers)))
	mux.Handle("/users/", admin(http.HandlerFunc(s.handleUserByID)))
	mux.Handle("/roles", admin(http.HandlerFunc(s.handleRoles)))
	mux.Handle("/blacklist", security(http.HandlerFunc(s.handleBlackList)))
	mux.Handle("/blacklist/", security(http.HandlerFunc(s.handleBlackListByID)))

	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// handleHealth responds to liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
