package server

import (
	"context"

	"crf-service/internal/adapter/grpc/health"
	"crf-service/internal/adapter/grpc/middleware"
	"crf-service/pkg/logger"
	"crf-service/pkg/ratelimit"

	"go.uber.org/zap"
	grpc "google.golang.org/grpc"
)

// SetupGRPC creates the gRPC server that carries the health service.
func SetupGRPC(
	healthCheck func(ctx context.Context) error,
	limiter *ratelimit.Limiter,
	serviceName string,
	l *zap.Logger,
) (*grpc.Server, *health.Reporter) {
	rateLimiter := middleware.NewRateLimiter(limiter, l)

	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)

	reporter := health.NewReporter(healthCheck, health.DefaultInterval, l, serviceName)
	reporter.Register(grpcServer)

	return grpcServer, reporter
}
