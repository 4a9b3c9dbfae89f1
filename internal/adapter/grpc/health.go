package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported through the gRPC health service.
const ServiceName = "library.v1.LibraryService"

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthReporter keeps the standard gRPC health service in step with the
// service's dependencies.
type HealthReporter struct {
	srv      *health.Server
	checks   map[string]Check
	interval time.Duration
	log      *zap.Logger
}

// NewHealthReporter creates a reporter probing checks every interval.
func NewHealthReporter(checks map[string]Check, interval time.Duration, log *zap.Logger) *HealthReporter {
	return &HealthReporter{
		srv:      health.NewServer(),
		checks:   checks,
		interval: interval,
		log:      log,
	}
}

// Server returns the health server to register on a grpc.Server.
func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.srv
}

// Run probes until ctx is done.
func (h *HealthReporter) Run(ctx context.Context) {
	h.probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.probe(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING.
func (h *HealthReporter) Shutdown() {
	h.srv.Shutdown()
}

func (h *HealthReporter) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}
