package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joesantos1/querodesconto-parceiros/internal/config"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/kafka"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/logger"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/migrate"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/repository"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/redis"
	"github.com/joesantos1/querodesconto-parceiros/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.CupomConfig
	DB           *gorm.DB
	Redis        *goredis.Client
	Repositories *Repositories

	// Gate is nil unless the claim gate is enabled.
	Gate       *redis.ClaimGate
	Sessions   middleware.SessionChecker
	Publisher  domain.PublisherPort
	Subscriber domain.SubscriberPort
	Events     *kafka.CouponEventPublisher

	Registry *prometheus.Registry
	Metrics  *metrics.CouponMetrics

	closers []func()
}

type Repositories struct {
	StoreRepo    domain.StoreRepository
	MemberRepo   domain.StoreMemberRepository
	UserRepo     domain.UserRepository
	CampaignRepo domain.CampaignRepository
	CouponRepo   domain.CouponRepository
	InstanceRepo domain.CouponInstanceRepository
	AuditRepo    domain.ValidationAttemptRepository
}

// InitializeDependencies opens every backing service named in cfg. ctx bounds
// the lifetime of the Kafka readers.
func InitializeDependencies(ctx context.Context, cfg *config.CupomConfig) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	switch cfg.Storage.Driver {
	case "memory":
		mem := memory.NewRepository()
		if cfg.Storage.SeedFile != "" {
			if err := LoadSeed(cfg.Storage.SeedFile, mem); err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
		}
		deps.Repositories = memoryRepositories(mem)
		slog.Warn("using in-memory storage, data is lost on restart")
	default:
		db := postgres.MustInitDB(cfg)
		if !cfg.CupomDB.SkipMigrate {
			if err := migrate.RunMigrations(db, migrations.FS); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		deps.DB = db
		deps.Repositories = postgresRepositories(db)
		deps.closers = append(deps.closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
	}

	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		deps.Redis = rdb
		deps.Sessions = redis.NewSessionStore(rdb)
		if cfg.ClaimGate.Enabled {
			deps.Gate = redis.NewClaimGate(rdb)
		}
		deps.closers = append(deps.closers, func() { rdb.Close() })
	} else {
		deps.Sessions = memory.NewSessionStore()
	}

	if cfg.KafkaService.Enabled {
		pub := kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers)
		deps.Publisher = pub
		deps.Subscriber = kafka.NewDefaultKafkaSubscriber(ctx, cfg.KafkaService.Brokers)
		deps.closers = append(deps.closers, func() {
			if err := pub.Close(); err != nil {
				slog.Error("failed to close kafka writer", "error", err)
			}
		})
	} else {
		bus := kafka.NewLocalBus()
		deps.Publisher = bus
		deps.Subscriber = bus
		deps.closers = append(deps.closers, bus.Close)
	}
	deps.Events = kafka.NewCouponEventPublisher(deps.Publisher, cfg.KafkaService.Topic)

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewCouponMetrics(deps.Registry)

	return deps, nil
}

// Close releases the backing services in reverse order of opening.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func postgresRepositories(db *gorm.DB) *Repositories {
	stores := repository.NewDefaultStoreRepository(db)
	return &Repositories{
		StoreRepo:    stores,
		MemberRepo:   stores,
		UserRepo:     repository.NewDefaultUserRepository(db),
		CampaignRepo: repository.NewDefaultCampaignRepository(db),
		CouponRepo:   repository.NewDefaultCouponRepository(db),
		InstanceRepo: repository.NewDefaultCouponInstanceRepository(db),
		AuditRepo:    logger.NewPGValidationAuditLogger(db),
	}
}

func memoryRepositories(mem *memory.Repository) *Repositories {
	return &Repositories{
		StoreRepo:    mem,
		MemberRepo:   mem,
		UserRepo:     mem,
		CampaignRepo: mem,
		CouponRepo:   mem,
		InstanceRepo: mem,
		AuditRepo:    mem,
	}
}
