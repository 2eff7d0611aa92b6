package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/parthero/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router registers handlers and applies middleware.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// Server runs a [Router] on the fixture address.
type Server struct {
	addr   string
	router Router
	logger *log.Logger
	srv    *http.Server
}

// NewServer creates a server for cfg. An empty host binds to 127.0.0.1; port 0 picks a free port.
func NewServer(cfg shared.FixtureConfig, router Router, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return &Server{
		addr:   net.JoinHostPort(host, strconv.Itoa(cfg.Port)),
		router: router,
		logger: logger,
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully. ready, when non-nil, receives the
// bound address once the listener is open.
func (s *Server) Run(ctx context.Context, ready chan<- string) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	addr := ln.Addr().String()
	s.logger.Info("Starting fixture server", "address", "http://"+addr)
	if ready != nil {
		ready <- addr
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fixture server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("Fixture server stopped")
	return nil
}
