// Package server exposes the glossary over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bobmcallan/lexicon/internal/app"
	"github.com/bobmcallan/lexicon/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}
}

// NewServer builds the routed, middleware-wrapped HTTP server. Write timeouts
// allow for a slow Gemini call.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:          a,
		logger:       a.Logger,
		shutdownChan: make(chan struct{}, 1),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:              net.JoinHostPort(a.Config.Server.Host, fmt.Sprint(a.Config.Server.Port)),
		Handler:           s.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * a.Config.Clients.Gemini.GetTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ShutdownRequested is signalled by POST /api/shutdown.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownChan
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info().Str("addr", l.Addr().String()).Msg("Starting REST API server")
	return s.server.Serve(l)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run listens on the configured address and serves until ctx is done or a
// shutdown is requested over HTTP, then drains for at most grace.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.runOn(ctx, l, grace)
}

func (s *Server) runOn(ctx context.Context, l net.Listener, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(l)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	case <-s.shutdownChan:
		s.logger.Info().Msg("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
