// The healthcheck package serves the standard gRPC health checking protocol
// (grpc.health.v1.Health) for orchestrators that probe over gRPC.
package healthcheck

import (
	"net"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StoreService is the service name reported alongside the overall server status.
const StoreService = "ticket_tracker.Store"

// Server reports SERVING while the ticket store is open and NOT_SERVING once shutdown begins.
type Server struct {
	logger     polylog.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer returns a health server that starts out NOT_SERVING.
func NewServer(logger polylog.Logger) *Server {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()

	healthpb.RegisterHealthServer(grpcServer, healthServer)

	s := &Server{
		logger:     logger.With("component", "grpc_health_server"),
		grpcServer: grpcServer,
		health:     healthServer,
	}
	s.SetServing(false)

	return s
}

// Serve accepts health check connections on listener until Stop is called.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("❤️ Starting gRPC health server")
	return s.grpcServer.Serve(listener)
}

// SetServing updates the status of both the overall server and StoreService.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(StoreService, status)

	s.logger.Debug().Str("status", status.String()).Msg("Updated gRPC health status")
}

// Stop marks every service NOT_SERVING, then stops the server after in-flight checks complete.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	s.logger.Info().Msg("Stopped gRPC health server")
}
