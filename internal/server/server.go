package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"codeberg.org/snonux/foodsync/internal"
	"codeberg.org/snonux/foodsync/internal/dispatch"
	"codeberg.org/snonux/foodsync/internal/metrics"
	"codeberg.org/snonux/foodsync/internal/processor"
)

// APIKeyHeader carries the API key.
const APIKeyHeader = "X-API-Key"

// Syncer runs one sync.
type Syncer interface {
	Run(ctx context.Context) (*processor.Report, error)
}

// Trigger sends the update workflow dispatch.
type Trigger interface {
	Trigger(ctx context.Context) error
}

// Server wires handlers onto a fiber app.
type Server struct {
	app     *fiber.App
	syncer  Syncer
	trigger Trigger
	metrics *metrics.Metrics
	logger  *zap.Logger
	apiKey  string
}

// New creates the server and registers its routes. syncer and trigger may be
// nil, in which case their routes answer 503.
func New(apiKey string, syncer Syncer, trigger Trigger, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		syncer:  syncer,
		trigger: trigger,
		metrics: m,
		logger:  logger,
		apiKey:  apiKey,
	}
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the given port until Shutdown.
func (s *Server) Listen(port int) error {
	s.logger.Info("Starting server", zap.Int("port", port))
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown stops the server, waiting for open requests up to timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)

	s.app.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api", s.requireAPIKey)
	api.All("/trigger", s.handleTrigger)
	api.Post("/sync", s.handleSync)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("ip", c.IP()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Error("Request error", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Debug("Request", fields...)
	return nil
}

func (s *Server) requireAPIKey(c *fiber.Ctx) error {
	if s.apiKey == "" {
		return c.Next()
	}

	got := c.Get(APIKeyHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": internal.Version})
}

func (s *Server) handleTrigger(c *fiber.Ctx) error {
	if s.trigger == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Dispatch not configured"})
	}

	err := s.trigger.Trigger(c.UserContext())
	s.metrics.ObserveDispatch(err)

	var upstream *dispatch.UpstreamError
	switch {
	case err == nil:
		s.logger.Info("Update workflow triggered")
		return c.JSON(fiber.Map{"message": "Update triggered successfully!"})

	case errors.Is(err, dispatch.ErrNoToken):
		s.logger.Error("Dispatch token missing")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &upstream):
		s.logger.Warn("GitHub rejected dispatch", zap.Int("status", upstream.StatusCode), zap.String("details", upstream.Details))
		return c.Status(upstream.StatusCode).JSON(fiber.Map{"error": "GitHub API Error", "details": upstream.Details})

	default:
		s.logger.Error("Dispatch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error", "details": err.Error()})
	}
}

func (s *Server) handleSync(c *fiber.Ctx) error {
	if s.syncer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Sync not configured"})
	}

	report, err := s.syncer.Run(c.UserContext())
	if err != nil {
		s.logger.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sync failed", "details": err.Error()})
	}

	sum := report.Summary
	return c.JSON(fiber.Map{
		"run_id":               report.RunID,
		"dry_run":              report.DryRun,
		"backed_up":            report.BackedUp,
		"total":                sum.Total,
		"reused":               sum.Reused,
		"updated":              sum.Updated,
		"added":                sum.Added,
		"dropped":              sum.Dropped,
		"translation_calls":    sum.TranslationCalls,
		"translation_failures": sum.TranslationFailures,
		"duration_ms":          report.Duration.Milliseconds(),
	})
}
