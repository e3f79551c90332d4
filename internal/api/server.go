package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/api/handlers"
	"github.com/amaumene/unig/internal/api/middleware"
	"github.com/amaumene/unig/internal/telemetry"
)

// Server is the local inspector exposing the client state and metrics
type Server struct {
	app     *fiber.App
	addr    string
	source  handlers.SnapshotSource
	metrics *telemetry.Metrics
	logger  *logrus.Logger
}

// NewServer creates a new inspector server listening on addr
func NewServer(addr string, source handlers.SnapshotSource, metrics *telemetry.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		addr:    addr,
		source:  source,
		metrics: metrics,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
	})
	s.app.Use(middleware.Logging(logger))
	s.setupRoutes()

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Handle)

	// Client state
	statusHandler := handlers.NewStatusHandler(s.source, s.logger)
	s.app.Get("/status", statusHandler.Summary)
	s.app.Get("/snapshot", statusHandler.Snapshot)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
}

// App exposes the fiber app, used by tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.addr).Info("Starting inspector server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the inspector server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down inspector server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}
