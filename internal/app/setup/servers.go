package setup

import (
	"net"
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/grpcapi"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/handlers"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/notifier"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Servers struct {
	HTTP       *http.Server
	GRPC       *grpc.Server
	GRPCHealth *health.Server
	GRPCAddr   string

	// Webhooks is nil when store webhooks are disabled.
	Webhooks *notifier.Dispatcher
}

func InitializeServers(deps *Dependencies, ucs *UseCases) *Servers {
	cfg := deps.Config
	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, deps.Sessions)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:        auth,
		Catalog:     handlers.NewCatalogHandler(ucs.CatalogUsecase),
		Ledger:      handlers.NewLedgerHandler(ucs.LedgerUsecase),
		Validation:  handlers.NewValidationHandler(ucs.ValidationUsecase),
		Stores:      handlers.NewStoreHandler(ucs.StoreUsecase),
		Campaigns:   handlers.NewCampaignHandler(ucs.CampaignUsecase),
		Coupons:     handlers.NewCouponHandler(ucs.CouponUsecase),
		Gatherer:    deps.Registry,
		CORSOrigins: cfg.HTTPServer.CORSOrigins,
	})

	grpcServer, grpcHealth := grpcapi.NewServer(auth, grpcapi.NewRedemptionHandler(ucs.ValidationUsecase))

	servers := &Servers{
		HTTP: &http.Server{
			Addr:         net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
			Handler:      router,
			ReadTimeout:  cfg.HTTPServer.ReadTimeout,
			WriteTimeout: cfg.HTTPServer.WriteTimeout,
		},
		GRPC:       grpcServer,
		GRPCHealth: grpcHealth,
		GRPCAddr:   net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port),
	}
	if cfg.Webhook.Enabled {
		servers.Webhooks = notifier.NewDispatcher(deps.Repositories.StoreRepo, cfg.Webhook.Secret, cfg.Webhook.Timeout, deps.Metrics)
	}
	return servers
}
