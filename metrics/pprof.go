package metrics

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/pokt-network/poktroll/pkg/polylog"
)

const endpointPprof = "/debug/pprof/"

// NewPprofHandler returns a handler exposing the runtime profiles under /debug/pprof/.
func NewPprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(endpointPprof, pprof.Index)
	mux.HandleFunc(endpointPprof+"cmdline", pprof.Cmdline)
	mux.HandleFunc(endpointPprof+"profile", pprof.Profile)
	mux.HandleFunc(endpointPprof+"symbol", pprof.Symbol)
	mux.HandleFunc(endpointPprof+"trace", pprof.Trace)
	return mux
}

// ServePprof starts a pprof server on the given address.
// Used to inspect lock contention on the store under load.
// The server is shut down when ctx is cancelled.
func ServePprof(ctx context.Context, logger polylog.Logger, addr string) {
	server := &http.Server{
		Addr:    addr,
		Handler: NewPprofHandler(),
	}

	go func() {
		logger.Info().Str("pprof_addr", addr).Msg("🔬 Starting pprof server for runtime debugging")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str("pprof_addr", addr).Msg("pprof server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Str("pprof_addr", addr).Msg("Stopping pprof server")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Error stopping pprof server")
		}
	}()
}
