package grpcapi

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer registers the redemption and health services.
func NewServer(auth *middleware.Authenticator, handler *RedemptionHandler) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(AuthInterceptor(auth)))
	RegisterRedemptionServer(srv, handler)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}
