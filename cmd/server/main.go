/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the retirement eligibility server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment, then apply flag overrides
  2. Build the logger
  3. Initialize SQLite store
  4. Create API handler, metrics and (optionally) the sweep scheduler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  --port             HTTP server port (default: RETIREMENT_PORT or 8080)
  --db               SQLite database path (default: RETIREMENT_DB or retirement.db)
                     Use ":memory:" for in-memory database
  --log-level        debug, info, warn, error
  --log-pretty       Human-readable console logs
  --sweep            Run the periodic eligibility sweep
  --sweep-interval   Sweep period, e.g. 1h or 24h
  --batch-workers    Concurrency of batch evaluation

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the sweep scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server --db=./data/retirement.db

  # Run in memory with a daily sweep and console logs
  ./server --db=":memory:" --sweep --log-pretty

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/scheduler.go: Sweep scheduler
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"github.com/warp/retirement-engine/api"
	"github.com/warp/retirement-engine/config"
	"github.com/warp/retirement-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "Human-readable console logs")
	flag.BoolVar(&cfg.SweepEnabled, "sweep", cfg.SweepEnabled, "Run the periodic eligibility sweep")
	flag.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "Sweep period")
	flag.IntVar(&cfg.BatchWorkers, "batch-workers", cfg.BatchWorkers, "Concurrency of batch evaluation")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := config.NewLogger(cfg, os.Stderr)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	metrics := api.NewMetrics()
	handler := api.NewHandler(store, metrics)
	handler.BatchWorkers = cfg.BatchWorkers

	sweep := api.NewSweepScheduler(store, metrics, logger)
	sweep.Enabled = cfg.SweepEnabled
	sweep.Interval = cfg.SweepInterval
	sweep.Workers = cfg.BatchWorkers
	sweep.Start()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Sweep:       sweep,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("db", cfg.DBPath).
			Bool("sweep", cfg.SweepEnabled).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			sweep.Stop()
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	return shutdown(server, sweep, logger)
}

// shutdown stops the sweep first so no pass writes while requests drain.
func shutdown(server *http.Server, sweep *api.SweepScheduler, logger zerolog.Logger) error {
	sweep.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
