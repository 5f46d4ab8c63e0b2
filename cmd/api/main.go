// Command api is the read-only Finnkampen API server.
//
// Usage:
//
//	finnkampen-api
//	API_PORT=8080 finnkampen-api

// @title Finnkampen API
// @version 1.0.0
// @description Read-only API over the nightly FIN vs SWE NHL aggregates: nightly totals and winners, season totals and the rendered post text.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Finnkampen
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/finnkampen/internal/api"
	"github.com/albapepper/finnkampen/internal/cache"
	"github.com/albapepper/finnkampen/internal/config"
	"github.com/albapepper/finnkampen/internal/db"
	"github.com/albapepper/finnkampen/internal/listener"
	"github.com/albapepper/finnkampen/internal/maintenance"
	"github.com/albapepper/finnkampen/internal/store"

	_ "github.com/albapepper/finnkampen/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns,
		"tls_pinned", cfg.DBCAFile != "")

	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Purge cached responses whenever ingest re-aggregates a date
	listenCfg, err := db.ConnConfig(cfg)
	if err != nil {
		logger.Error("Failed to build listener connection config", "error", err)
		os.Exit(1)
	}
	go listener.Start(ctx, listenCfg, appCache, logger)

	// Catch-up refresh of the nightly view in case a post-ingest refresh failed
	go maintenance.Start(ctx, pool, maintenance.Config{RefreshInterval: cfg.MVRefreshInterval}, logger)

	router := api.NewRouter(store.New(pool), pool, appCache, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting Finnkampen API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
