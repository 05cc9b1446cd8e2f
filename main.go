package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"

	"github.com/buildwithgrove/ticket-tracker/api"
	"github.com/buildwithgrove/ticket-tracker/filestore"
	"github.com/buildwithgrove/ticket-tracker/healthcheck"
	"github.com/buildwithgrove/ticket-tracker/postgres/tracker"
	"github.com/buildwithgrove/ticket-tracker/store"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Upper bound on how long in-flight requests may take to drain on shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("🎫 Starting Ticket Tracker ...")

	env, err := gatherEnvVars()
	if err != nil {
		panic(fmt.Errorf("failed to gather environment variables: %v", err))
	}
	fmt.Println("💻 Log Level: ", env.loggerLevel)

	loggerOpts := []polylog.LoggerOption{
		polyzero.WithLevel(polyzero.ParseLevel(env.loggerLevel)),
	}

	// Initialize new polylog logger
	logger := polyzero.NewLogger(loggerOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, env); err != nil {
		logger.Error().Err(err).Msg("❌ Ticket tracker exited with an error")
		stop()
		os.Exit(1)
	}

	logger.Info().Msg("👋 Ticket tracker stopped")
}

// run serves the ticket tracker until ctx is cancelled or a server fails.
// The store is flushed on every return path once it has been loaded, and a
// failed flush is part of the returned error.
func run(ctx context.Context, logger polylog.Logger, env envVars) (err error) {
	dataSource, err := newDataSource(logger, env)
	if err != nil {
		panic(err)
	}

	// A malformed snapshot must stop startup: serving would overwrite it on close.
	ticketStore, err := store.NewStore(logger, dataSource)
	if err != nil {
		panic(fmt.Errorf("failed to initialize ticket store: %w", err))
	}

	logger.Info().Msg("Successfully initialized ticket store")

	defer func() {
		if closeErr := ticketStore.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	// Stops the metrics and pprof servers on every return path.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	setupMetricsServer(ctx, logger, env.metricsAddr, version)
	if env.pprofAddr != "" {
		setupPprofServer(ctx, logger, env.pprofAddr)
	}

	healthServer, err := setupHealthServer(logger, env.grpcHealthPort)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    env.httpAddr(),
		Handler: api.NewHandler(logger, ticketStore, env.staticDir),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("🚀 Ticket tracker HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if healthServer != nil {
		healthServer.SetServing(true)
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err = <-serveErr:
		err = fmt.Errorf("HTTP server failed: %w", err)
	}

	if healthServer != nil {
		healthServer.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("Error stopping HTTP server")
	}

	return err
}

// newDataSource returns the Postgres data source if a connection string is
// configured, and the snapshot file data source otherwise.
func newDataSource(logger polylog.Logger, env envVars) (store.DataSource, error) {
	if env.postgresConnectionString == "" {
		logger.Info().Str("path", env.dbFileName).Msg("💾 Using snapshot file as the data source")
		return filestore.NewFileDriver(logger, env.dbFileName), nil
	}

	postgresDataSource, err := tracker.NewTrackerPostgresDriver(logger, env.postgresConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger.Info().Msg("🐘 Successfully connected to postgres as a data source")

	return postgresDataSource, nil
}

// setupHealthServer starts the gRPC health server on port.
// It returns nil without starting anything if port is 0.
func setupHealthServer(logger polylog.Logger, port int) (*healthcheck.Server, error) {
	if port == 0 {
		return nil, nil
	}

	listen, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC health checks: %w", err)
	}

	healthServer := healthcheck.NewServer(logger)
	go func() {
		if err := healthServer.Serve(listen); err != nil {
			logger.Error().Err(err).Msg("gRPC health server failed")
		}
	}()

	return healthServer, nil
}
