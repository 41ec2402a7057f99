package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps http.Server with the router.
type Server struct {
	srv             *http.Server
	router          http.Handler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a server for router.  Zero timeouts take defaults; the
// write timeout stays zero so the state stream is not cut off.
func NewServer(cfg ServerConfig, router http.Handler, logger logging.Logger) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		router:          router,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start blocks serving requests until Stop.  A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) Addr() string          { return s.srv.Addr }
func (s *Server) Handler() http.Handler { return s.router }

//Personal.AI order the ending
