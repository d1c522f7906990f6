package grpcapi

import (
	"context"
	"strings"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor guards the redemption service with the same bearer tokens
// the REST API accepts. Other services (health) pass through.
func AuthInterceptor(auth *middleware.Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}
		var raw string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("authorization"); len(v) > 0 {
				raw = strings.TrimSpace(strings.TrimPrefix(v[0], "Bearer "))
			}
		}
		p, err := auth.Verify(ctx, raw)
		if err != nil {
			return nil, toStatus(info.FullMethod, err)
		}
		if p.Role != domain.RoleLojista {
			return nil, status.Error(codes.PermissionDenied, "role lojista required")
		}
		return handler(middleware.WithPrincipal(ctx, p), req)
	}
}
