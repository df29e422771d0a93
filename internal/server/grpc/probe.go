package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// probe checks the store right away and then every interval until ctx is
// done.
func (s *GRPCServer) probe(ctx context.Context) {
	s.checkOnce(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOnce(ctx)
		}
	}
}

// checkOnce pings the store and publishes the result as the status of the
// relay service and of the server as a whole.
func (s *GRPCServer) checkOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	timeout := s.interval
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.PingContext(pingCtx); err != nil {
		if ctx.Err() != nil {
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
		s.logger.Warn(ctx, "store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus(common.ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}
