// internal/grpc/server.go
package grpc

import (
	"context"
	"log/slog"
	"time"

	"filmorate/internal/store"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName имя сервиса в запросах grpc.health.v1.Health.
const ServiceName = "filmorate"

const pingTimeout = 2 * time.Second

// Server реализует grpc.health.v1.Health поверх проверки хранилища.
type Server struct {
	healthpb.UnimplementedHealthServer // Обязательно для прямой совместимости
	pinger                             store.Pinger
	logger                             *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера здоровья.
func NewServer(pinger store.Pinger, logger *slog.Logger) *Server {
	return &Server{
		pinger: pinger,
		logger: logger,
	}
}

// Check реализует gRPC метод Check. Пустое имя означает сервер целиком.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	service := req.GetService()
	if service != "" && service != ServiceName {
		s.logger.WarnContext(ctx, "gRPC health check for unknown service", slog.String("service", service))
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.pinger.Ping(pingCtx); err != nil {
		s.logger.WarnContext(ctx, "Storage ping failed during gRPC health check", slog.String("error", err.Error()))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// Register регистрирует сервис здоровья и, если нужно, reflection.
func Register(srv *grpclib.Server, health *Server, withReflection bool) {
	healthpb.RegisterHealthServer(srv, health)
	if withReflection {
		reflection.Register(srv)
	}
}
