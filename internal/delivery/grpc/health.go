// Package grpc exposes the standard gRPC health service so orchestrators can
// check the process without going through the HTTP stack.
package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "materialmanagement.Inventory"

type Pinger func(ctx context.Context) error

type HealthServer struct {
	server *grpc.Server
	health *health.Server
	ping   Pinger
	log    *logrus.Logger
}

func NewHealthServer(ping Pinger, logger *logrus.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, h)
	reflection.Register(grpcServer)
	logger.Info("gRPC health and reflection services registered")

	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: grpcServer, health: h, ping: ping, log: logger}
}

func (s *HealthServer) Server() *grpc.Server { return s.server }

// Refresh pings the store once and publishes the result.
func (s *HealthServer) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			s.log.Warnf("gRPC health: store unreachable: %v", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch refreshes the status every interval until ctx is done.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING and stops the server gracefully.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
