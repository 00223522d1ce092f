package grpc

import (
	"context"
	"net"

	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server exposes the gRPC health service publicly and everything else behind
// the bearer-token interceptors.
type Server struct {
	address  string
	verifier *auth.Verifier
	logger   logging.Logger
	health   *health.Server
}

func NewServer(address string, verifier *auth.Verifier, logger logging.Logger) *Server {
	return &Server{
		address:  address,
		verifier: verifier,
		logger:   logger.With("module", "grpc_server"),
		health:   health.NewServer(),
	}
}

func (s *Server) newGRPCServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authUnaryInterceptor),
		grpc.ChainStreamInterceptor(s.authStreamInterceptor),
	)
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newGRPCServer()
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
