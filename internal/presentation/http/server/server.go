// Package server runs the editing API until its context is cancelled and then
// drains in-flight requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

// Config holds the listener address and timeouts
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ConfigFromEnv builds a Config from pkg/config; an empty port uses PORT
func ConfigFromEnv(port string) Config {
	if port == "" {
		port = config.Port
	}
	return Config{
		Addr:            ":" + port,
		ReadTimeout:     config.ServerReadTimeout,
		WriteTimeout:    config.ServerWriteTimeout,
		IdleTimeout:     config.ServerIdleTimeout,
		ShutdownTimeout: config.ShutdownTimeout,
	}
}

// Server serves one handler with graceful shutdown
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *logging.ChanneledLogger
}

// New creates a server for handler. Preview websockets are hijacked by the
// upgrader, so the write timeout only bounds plain API responses.
func New(cfg Config, handler http.Handler, logger *logging.ChanneledLogger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down within
// the shutdown timeout. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()
	s.logger.System().Info("HTTP server listening", "address", ln.Addr().String())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve HTTP: %w", err)
	case <-ctx.Done():
	}

	start := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Shutdown().Error("HTTP server did not drain in time", "error", err.Error(), "timeout", s.shutdownTimeout)
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	<-serveErr
	s.logger.Shutdown().Info("HTTP server stopped", "duration", time.Since(start))
	return nil
}
