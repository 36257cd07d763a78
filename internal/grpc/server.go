package grpc

import (
	"context"
	"fmt"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"goodhub-chat/internal/logger"
	"goodhub-chat/internal/observability"
)

// ServiceName is the health-check service name reported by this process.
const ServiceName = "goodhub.chat.v1.Chat"

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Server exposes the standard gRPC health service. Status follows the
// registered checkers.
type Server struct {
	srv      *grpc.Server
	health   *health.Server
	checkers map[string]Checker
	log      *logger.Logger
}

func NewServer(log *logger.Logger, checkers map[string]Checker) *Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, checkers: checkers, log: log.With("component", "grpc")}
}

// Refresh runs every checker and publishes the aggregate status.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checkers {
		if err := check(ctx); err != nil {
			s.log.Warn("dependency unhealthy", "dependency", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve blocks serving on addr until Stop.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.ServeListener(lis)
}

func (s *Server) ServeListener(lis net.Listener) error {
	s.log.Info("grpc server listening", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Stop marks the service as not serving and drains connections.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
