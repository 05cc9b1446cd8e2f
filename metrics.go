package main

import (
	"context"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/metrics"
)

// setupMetricsServer starts the Prometheus metrics and health server at the supplied address.
// It stops when ctx is cancelled.
func setupMetricsServer(ctx context.Context, logger polylog.Logger, addr, version string) {
	metrics.ServeMetrics(ctx, logger, addr, version)
}

// setupPprofServer starts the pprof server at the supplied address.
// It stops when ctx is cancelled.
func setupPprofServer(ctx context.Context, logger polylog.Logger, addr string) {
	metrics.ServePprof(ctx, logger, addr)
}
