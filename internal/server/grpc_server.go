package server

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oggyb/ridemate/internal/app"
)

// NewGRPCServer builds a gRPC server with authentication and logging
// interceptors, the standard health service and all provided services.
func NewGRPCServer(appCtx *app.AppContext, registrars ...Registrar) *grpc.Server {
	authn := NewAuthenticator(appCtx)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingUnaryInterceptor(appCtx.Logger),
			authn.UnaryInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			LoggingStreamInterceptor(appCtx.Logger),
			authn.StreamInterceptor(),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	hs := health.NewServer()
	for name := range grpcServer.GetServiceInfo() {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	return grpcServer
}

// StartGRPCServer serves grpcServer on the configured address until ctx is
// done, then stops it gracefully.
func StartGRPCServer(ctx context.Context, appCtx *app.AppContext, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", appCtx.Config.GRPC.Host, appCtx.Config.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	appCtx.Logger.Info("starting gRPC server", "addr", addr)
	return grpcServer.Serve(lis)
}
