/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the comp-off ledger server. Handles
  configuration, dependency injection, the background expiry sweep,
  and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (.env supported)
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Start the expiry sweep scheduler (if enabled)
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweep scheduler
  4. Close database connection
  5. Exit

COMMAND-LINE FLAGS:
  -port    Overrides APP_PORT
  -db      Overrides DB_PATH; use ":memory:" for an in-memory database

ENVIRONMENT:
  APP_PORT                  HTTP server port (default: 8080)
  APP_ENV                   development|production (default: development)
  DB_PATH                   SQLite database path, ":memory:" for in-memory
  SWEEP_ENABLED             Run the background expiry sweep (default: true)
  SWEEP_INTERVAL            Sweep cadence, e.g. "1h" (default: 1h)
  LEAVE_ANNUAL_ENTITLEMENT  Default paid-leave days per year (default: 18)

SEE ALSO:
  - config/config.go: Environment parsing and defaults
  - api/server.go: Router configuration
  - api/scheduler.go: Background expiry sweep
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosterly/comp-ledger/api"
	"github.com/rosterly/comp-ledger/config"
	"github.com/rosterly/comp-ledger/ledger"
	"github.com/rosterly/comp-ledger/store/sqlite"
)

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides APP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *port != 0 {
		cfg.App.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.DBPath = *dbPath
	}

	logger := api.NewLogger(cfg.App.Env)

	store, err := sqlite.New(cfg.Store.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", slog.String("path", cfg.Store.DBPath), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	handler := api.NewHandler(store, ledger.DaysFromInt(cfg.Leave.DefaultAnnualEntitlement))
	router := api.NewRouter(handler, logger)

	scheduler := api.NewSweepScheduler(handler.Sweeper, logger)
	scheduler.Enabled = cfg.Sweep.Enabled
	scheduler.CheckInterval = cfg.Sweep.Interval
	scheduler.Start()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.App.Env),
			slog.String("db", cfg.Store.DBPath),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.Any("error", err))
	}
	scheduler.Stop()

	logger.Info("server stopped")
}
