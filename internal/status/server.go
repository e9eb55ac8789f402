package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Server is the read-only HTTP view over a Manager.
//
// It is created with NewServer() and started with Start().
type Server struct {
	cfg     config.StatusConfig
	logger  *logging.Logger
	manager *Manager
	version string

	server *http.Server
	addr   string
}

// NewServer creates a status server over the given manager.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - cfg: Bind address and HTTP timeouts
//   - logger: Structured logger
//   - manager: Status source to serve
//   - version: Reported by the health endpoint
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func NewServer(cfg config.StatusConfig, logger *logging.Logger, manager *Manager, version string) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if manager == nil {
		return nil, fmt.Errorf("status manager is required")
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		version: version,
	}, nil
}

// Start binds the listener and begins serving in a background goroutine.
//
// Binding happens synchronously so the caller learns immediately when
// the port is unavailable and can degrade instead of dying.
//
// Parameters:
//   - ctx: Context for startup (the listener outlives it; use Close())
//
// Returns:
//   - error: If the listener cannot bind
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("status server listen on %s: %w", addr, err)
	}
	s.addr = ln.Addr().String()

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server error", "error", err)
		}
	}()

	s.logger.Info("status server listening", "address", s.addr)
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
// Empty until Start() succeeds.
func (s *Server) Addr() string {
	return s.addr
}

// Close gracefully shuts down the server, waiting for in-flight requests
// up to the shutdown timeout.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("status server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down status server: %w", err)
	}
	return nil
}
