// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

// Command api is the entry point for the ProsePilot HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and the change feed.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prosepilot/api/internal/api"
	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/chapter"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/config"
	"github.com/prosepilot/api/internal/platform/constants"
	"github.com/prosepilot/api/internal/platform/migration"
	"github.com/prosepilot/api/internal/platform/objectstore"
	pgstore "github.com/prosepilot/api/internal/platform/postgres"
	redisstore "github.com/prosepilot/api/internal/platform/redis"
	"github.com/prosepilot/api/internal/platform/sec"
	"github.com/prosepilot/api/internal/reference"
	"github.com/prosepilot/api/internal/team"
	"github.com/prosepilot/api/internal/version"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "prosepilot"))
	slog.SetDefault(log)

	log.Info("[ProsePilot] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "prosepilot"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application context: cancelled at shutdown to stop the feed hub and
	// the rate-limiter janitor.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Verification ─────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Object Storage (optional) ──────────────────────────────────────
	var covers *objectstore.Store
	if cfg.HasObjectStorage() {
		covers, err = objectstore.New(cfg, log)
		must(log, err, "initialize object storage")
	} else {
		log.Warn("object_storage_not_configured", slog.String("effect", "cover uploads disabled"))
	}

	// ── 8. Change Feed ────────────────────────────────────────────────────
	notifier := feed.NewPublisher(rdb, log)

	hub := feed.NewHub(rdb, log)
	must(log, hub.Start(appCtx), "start feed hub")
	defer hub.Stop()

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	memberRepository := team.NewMemberRepository(pool)

	bookRepository := book.NewRepository(pool)
	bookService := book.NewService(bookRepository, memberRepository, notifier, covers)
	bookHandler := book.NewHandler(bookService)

	chapterRepository := chapter.NewRepository(pool)
	chapterService := chapter.NewService(chapterRepository, bookService, notifier)
	chapterHandler := chapter.NewHandler(chapterService)

	versionRepository := version.NewRepository(pool)
	versionService := version.NewService(versionRepository, chapterRepository, bookService, notifier)
	versionHandler := version.NewHandler(versionService)

	referenceHandler := reference.NewHandler(reference.NewRepository(pool))

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      bookHandler,
		Chapter:   chapterHandler,
		Version:   versionHandler,
		Reference: referenceHandler,
		Feed:      hub,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
