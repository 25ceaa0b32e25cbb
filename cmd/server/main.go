// Package main is the entry point for the eventscope server. It loads
// configuration, opens the session storage backend, loads the seed
// directory and catalog, wires together all plugins and widgets, and starts
// the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pugetsound/eventscope/internal/app"
	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/config"
	"github.com/pugetsound/eventscope/internal/database"
	"github.com/pugetsound/eventscope/internal/kvstore"
	"github.com/pugetsound/eventscope/internal/seed"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Configure structured logging based on environment.
	setupLogging(cfg)

	if err := run(cfg); err != nil {
		slog.Error("eventscope failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run opens storage, wires the application and serves until shutdown.
// Deferred cleanup runs on every return path, so main only exits after it.
func run(cfg *config.Config) error {
	slog.Info("starting eventscope",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("storage", cfg.Storage.Backend),
	)

	// --- Session Storage ---
	provider, closer, err := storageOpener(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("opening session storage: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close session storage", slog.Any("error", err))
		}
	}()

	// --- Seed Data ---
	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("loading seed data: %w", err)
	}
	slog.Info("seed loaded",
		slog.Int("users", len(data.Users)),
		slog.Int("published", len(data.Published)),
		slog.Int("pending", len(data.Pending)),
	)

	// Location was validated by config.Load.
	loc, _ := cfg.Calendar.Location()
	clk := clock.New(loc, cfg.Calendar.WeekStartDay())

	// --- Create Application ---
	application, err := app.New(cfg, provider, data, clk)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}

	// Register all routes (feed, plugins, widgets, API).
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	// Listen for interrupt/term signals to drain connections cleanly.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// storageOpener is swapped in tests.
var storageOpener = openStorage

// openStorage builds the session key-value provider for the configured
// backend. The returned closer releases the backing connection.
func openStorage(ctx context.Context, cfg *config.Config) (kvstore.Provider, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to Redis")
		return kvstore.NewRedis(rdb), rdb, nil

	case config.StorageSQLite:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("opened SQLite session store", slog.String("path", cfg.Storage.SQLitePath))
		return store, db, nil

	case config.StorageMemory:
		slog.Warn("using in-memory session storage; sessions are lost on restart")
		return kvstore.NewMemory(), io.NopCloser(nil), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation. LOG_LEVEL sets the minimum level.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
