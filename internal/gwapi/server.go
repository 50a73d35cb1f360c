package gwapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ajay-paratmandali/s3gw/internal/logger"
)

// Server is the gateway's HTTP server, wrapping an http.Server with
// graceful shutdown.
type Server struct {
	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer builds a Server bound to addr serving the router built from
// deps.
func NewServer(addr string, deps Deps) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(deps),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // part uploads can legitimately run long
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests for
// up to shutdownTimeout before returning.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("gateway server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("gateway server shutdown error: %w", err)
			logger.Error("gateway server shutdown error", "error", err)
		} else {
			logger.Info("gateway server stopped gracefully")
		}
	})
	return shutdownErr
}
