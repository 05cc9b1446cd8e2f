package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	endpointMetrics = "/metrics"
	endpointHealth  = "/healthz"
)

// HealthResponse represents the JSON response for the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

// NewMetricsHandler returns the handler serving Prometheus metrics and the health endpoint.
func NewMetricsHandler(logger polylog.Logger, version string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(endpointMetrics, promhttp.Handler())

	mux.HandleFunc(endpointHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := HealthResponse{
			Status:  "healthy",
			Service: "ticket-tracker",
			Version: version,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error().Err(err).Msg("Failed to encode health response")
		}
	})

	return mux
}

// ServeMetrics starts a Prometheus metrics server with health endpoint on the given address.
// The server is shut down when ctx is cancelled.
func ServeMetrics(ctx context.Context, logger polylog.Logger, addr, version string) {
	server := &http.Server{
		Addr:    addr,
		Handler: NewMetricsHandler(logger, version),
	}

	go func() {
		logger.Info().Str("metrics_addr", addr).Msg("📊 Starting Prometheus metrics server with health endpoint")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str("metrics_addr", addr).Msg("Prometheus metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Str("metrics_addr", addr).Msg("Stopping Prometheus metrics server")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Error stopping Prometheus metrics server")
		}
	}()
}
