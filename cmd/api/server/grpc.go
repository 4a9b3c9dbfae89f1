package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "library-service/internal/adapter/grpc"
	"library-service/internal/adapter/grpc/middleware"
	"library-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the standard health service.
// Reflection is enabled outside production.
func SetupGRPC(health *grpcadapter.HealthReporter, rateLimiter *middleware.RateLimiter, env string, l *zap.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{logger.RequestIDInterceptor()}
	if rateLimiter != nil {
		interceptors = append(interceptors, rateLimiter.UnaryInterceptor())
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	healthpb.RegisterHealthServer(grpcServer, health.Server())

	if env != "production" {
		reflection.Register(grpcServer)
	}

	l.Debug("gRPC server configured",
		zap.Int("interceptors", len(interceptors)),
		zap.Bool("reflection", env != "production"),
	)
	return grpcServer
}
