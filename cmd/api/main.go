// Package main is the entry point for the travel log API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitpintodas/comem-travel-log-api/internal/config"
	"github.com/vitpintodas/comem-travel-log-api/internal/handler"
	"github.com/vitpintodas/comem-travel-log-api/internal/middleware"
	"github.com/vitpintodas/comem-travel-log-api/internal/realtime"
	"github.com/vitpintodas/comem-travel-log-api/internal/repo"
	"github.com/vitpintodas/comem-travel-log-api/internal/service"
	"github.com/vitpintodas/comem-travel-log-api/migrations"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	userRepo := repo.NewUserRepo(pool)
	tripRepo := repo.NewTripRepo(pool)
	placeRepo := repo.NewPlaceRepo(pool)
	statsRepo := repo.NewStatsRepo(pool)

	hub := realtime.NewHub()
	go hub.Run(ctx)
	broadcaster := realtime.NewBroadcaster(statsRepo, hub, cfg.StatsTimeout)

	api := handler.NewServer(
		service.NewAuthService(userRepo, cfg.Secret),
		service.NewUserService(userRepo, cfg.BcryptCost),
		service.NewTripService(tripRepo),
		service.NewPlaceService(placeRepo, tripRepo),
		broadcaster,
		handler.Options{
			BaseURL:       cfg.BaseURL,
			Version:       version,
			AuthRateLimit: cfg.AuthRateLimit,
		},
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
	// Metrics → CORS → MaxBodySize.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// login rate limit keys on.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/ws", realtime.NewHandler(hub, statsRepo, cfg.StatsTimeout, cfg.CORSOrigins))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	broadcaster.Wait()
	slog.Info("server stopped")
}

// migrate brings the schema up to date with the embedded migrations.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate: create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: run migrations: %w", err)
	}
	for _, res := range results {
		slog.Info("applied migration", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
