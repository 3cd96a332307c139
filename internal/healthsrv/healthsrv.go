// Package healthsrv exposes the standard grpc.health.v1 service so that
// orchestrators can probe the transcript API over gRPC.
package healthsrv

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name probes ask for. The empty name reports the
// overall server status and is kept in sync with it.
const ServiceName = "transcript.v1.TranscriptAPI"

// Server wraps a gRPC server that only serves health checks.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    *logrus.Logger
}

// New creates a Server reporting NOT_SERVING until SetServing is called.
func New(log *logrus.Logger) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		log:    log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)
	return s
}

// SetServing flips the reported status of the service and the server.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.log.WithField("status", status.String()).Debug("gRPC health status changed")
}

// Serve answers health checks on lis until ctx is done, then reports
// NOT_SERVING and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", lis.Addr().String()).Info("gRPC health server listening")
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("grpc health server: %w", err)
	}
}
