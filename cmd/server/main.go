package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apfk88/heartglance/internal/activity"
	"github.com/apfk88/heartglance/internal/domain"
	"github.com/apfk88/heartglance/internal/glance"
	"github.com/apfk88/heartglance/internal/pipeline"
	"github.com/apfk88/heartglance/internal/platform/config"
	"github.com/apfk88/heartglance/internal/platform/logging"
	"github.com/apfk88/heartglance/internal/platform/retry"
	"github.com/apfk88/heartglance/internal/postgres"
	"github.com/apfk88/heartglance/internal/redis"
	"github.com/apfk88/heartglance/internal/server"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

var connectPolicy = retry.Policy{
	MaxAttempts:    5,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Connection attempt failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	pool, err := retry.Do(ctx, connectPolicy, func() (*pgxpool.Pool, error) {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return postgres.Connect(connectCtx, cfg.DatabaseURL)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := postgres.RunMigrations(migrateCtx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := retry.Do(ctx, connectPolicy, func() (*goredis.Client, error) {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return redis.NewClient(connectCtx, cfg.RedisURL)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, controller *activity.Controller) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Dismiss the glance surface before stopping the actor so the
		// display does not outlive the process.
		controller.EndActivity(shutdownCtx)
		controller.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool = setupDB(ctx, cfg)
		defer pool.Close()
	} else {
		slog.Info("DATABASE_URL not set, session journal disabled")
	}

	var redisClient *goredis.Client
	var store domain.ReadingStore
	if cfg.RedisURL != "" {
		redisClient = setupRedis(ctx, cfg)
		defer func() { _ = redisClient.Close() }()
		store = redis.NewReadingStore(redisClient)
	} else {
		slog.Info("REDIS_URL not set, keeping the reading window in memory")
		store = pipeline.NewInMemoryStore()
	}

	gateway := glance.NewClient(cfg.GlanceBaseURL, cfg.GlanceAPIToken, cfg.GlanceCapabilityTTL, clock)

	var journal domain.SessionJournal
	if pool != nil {
		journal = postgres.NewJournal(pool)
	}

	controller := activity.NewController(gateway, activity.SlogDiagnostics{}, journal, clock,
		domain.DismissalPolicy(cfg.GlanceDismissalPolicy))
	engine := pipeline.NewEngine(store, controller, clock, cfg.StatsWindow)

	// Pass nil explicitly to avoid typed-nil interface values.
	var srv *server.Server
	switch {
	case redisClient != nil && pool != nil:
		srv = server.NewServer(cfg, engine, controller, gateway, redisClient, pool)
	case redisClient != nil:
		srv = server.NewServer(cfg, engine, controller, gateway, redisClient, nil)
	case pool != nil:
		srv = server.NewServer(cfg, engine, controller, gateway, nil, pool)
	default:
		srv = server.NewServer(cfg, engine, controller, gateway, nil, nil)
	}

	done := runGracefulShutdown(srv, controller)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
