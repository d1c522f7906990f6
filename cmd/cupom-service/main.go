package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/app/background"
	"github.com/joesantos1/querodesconto-parceiros/internal/app/setup"
	"github.com/joesantos1/querodesconto-parceiros/internal/config"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.New(cfg.LogConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}
	servers := setup.InitializeServers(deps, ucs)

	var gate background.StockReconciler
	if deps.Gate != nil {
		gate = deps.Gate
	}
	tasks := background.NewBackgroundTasks(
		deps.Repositories.CouponRepo,
		deps.Repositories.InstanceRepo,
		gate,
		deps.Metrics,
		cfg.Background.GateReconcileInterval,
		cfg.Background.GaugeInterval,
	)
	tasks.StartAll(ctx)

	lis, err := net.Listen("tcp", servers.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server started", "addr", servers.HTTP.Addr, "env", cfg.Env)
		if err := servers.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("grpc server started", "addr", servers.GRPCAddr)
		return servers.GRPC.Serve(lis)
	})

	if servers.Webhooks != nil {
		msgs, err := deps.Subscriber.Subscribe(cfg.KafkaService.Topic, cfg.KafkaService.GroupID)
		if err != nil {
			log.Fatalf("failed to subscribe to coupon events: %v", err)
		}
		g.Go(func() error {
			return servers.Webhooks.Run(gctx, msgs)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		servers.GRPCHealth.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := servers.HTTP.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
		servers.GRPC.GracefulStop()
		ucs.Events.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		deps.Close()
		os.Exit(1)
	}
}
