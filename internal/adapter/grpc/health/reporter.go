// Package health exposes the standard gRPC health service and keeps its
// serving status in sync with a periodic dependency check.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultInterval is how often the dependency check runs.
const DefaultInterval = 10 * time.Second

// Reporter owns a grpc health server and flips its status from a check func.
type Reporter struct {
	server   *grpchealth.Server
	check    func(ctx context.Context) error
	interval time.Duration
	services []string
	log      *zap.Logger
}

// NewReporter creates a Reporter for the overall server ("") and the named services.
func NewReporter(check func(ctx context.Context) error, interval time.Duration, log *zap.Logger, services ...string) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Reporter{
		server:   grpchealth.NewServer(),
		check:    check,
		interval: interval,
		services: append([]string{""}, services...),
		log:      log,
	}
	r.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return r
}

// Register attaches the health service to s.
func (r *Reporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Run checks immediately, then every interval, until ctx is done.
// On return every service is reported as NOT_SERVING.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return
		case <-ticker.C:
			r.probe(ctx)
		}
	}
}

func (r *Reporter) probe(ctx context.Context) {
	if r.check == nil {
		r.set(healthpb.HealthCheckResponse_SERVING)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	if err := r.check(ctx); err != nil {
		r.log.Warn("health probe failed", zap.Error(err))
		r.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	r.set(healthpb.HealthCheckResponse_SERVING)
}

func (r *Reporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	for _, svc := range r.services {
		r.server.SetServingStatus(svc, status)
	}
}
