package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apfk88/heartglance/internal/domain"
	apperrors "github.com/apfk88/heartglance/internal/errors"
	"github.com/apfk88/heartglance/internal/platform/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// readingRecorder accepts validated heart-rate readings from the transport layer.
type readingRecorder interface {
	Record(ctx context.Context, bpm int, status domain.StreamStatus) error
	EndStream(ctx context.Context) error
}

// contentProvider exposes the read side of the live activity session.
type contentProvider interface {
	CurrentContent(ctx context.Context) (domain.ContentState, bool)
}

// gatewayHealthChecker is a minimal interface for glance gateway health checks.
type gatewayHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	recorder readingRecorder
	activity contentProvider
	gateway  gatewayHealthChecker

	// redisHealth and postgresHealth are nil when the corresponding backend
	// is not configured; their readiness checks are skipped.
	redisHealth    redisHealthChecker
	postgresHealth postgresHealthChecker

	limits    *ingestLimiter
	startTime time.Time
}

func NewServer(cfg *config.Config, recorder readingRecorder, activity contentProvider, gateway gatewayHealthChecker, redisHealth redisHealthChecker, postgresHealth postgresHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(correlationMiddleware)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:           e,
		config:         cfg,
		recorder:       recorder,
		activity:       activity,
		gateway:        gateway,
		redisHealth:    redisHealth,
		postgresHealth: postgresHealth,
		limits:         newIngestLimiter(int64(cfg.MaxWebSocketConnections), defaultConnectionsPerSecond, defaultConnectionBurst),
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
