package setup

import (
	"fmt"

	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
)

type UseCases struct {
	CatalogUsecase    usecase.CatalogUsecase
	LedgerUsecase     usecase.LedgerUsecase
	ValidationUsecase usecase.ValidationUsecase
	StoreUsecase      usecase.StoreUsecase
	CampaignUsecase   usecase.CampaignUsecase
	CouponUsecase     usecase.CouponUsecase

	// Events must be drained with Wait before the publisher is closed.
	Events *usecase.EventEmitter
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	repos := deps.Repositories

	// A nil *redis.ClaimGate stored in the interface would not compare equal
	// to nil inside the usecases.
	var gate usecase.ClaimGate
	var gateStock usecase.GateStock
	if deps.Gate != nil {
		gate = deps.Gate
		gateStock = deps.Gate
	}

	events := usecase.NewEventEmitter(deps.Events, deps.Metrics)

	catalogUsecase, err := usecase.NewDefaultCatalogUsecase(
		repos.CouponRepo,
		repos.CampaignRepo,
		repos.InstanceRepo,
		repos.StoreRepo,
		repos.UserRepo,
		gate,
		events,
		deps.Metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog usecase: %w", err)
	}

	ledgerUsecase := usecase.NewDefaultLedgerUsecase(repos.InstanceRepo, repos.StoreRepo, repos.CampaignRepo)

	validationUsecase := usecase.NewDefaultValidationUsecase(
		repos.InstanceRepo,
		repos.MemberRepo,
		repos.StoreRepo,
		repos.CampaignRepo,
		repos.UserRepo,
		repos.AuditRepo,
		gate,
		events,
		deps.Metrics,
	)

	storeUsecase := usecase.NewDefaultStoreUsecase(repos.StoreRepo, repos.MemberRepo, repos.UserRepo)
	campaignUsecase := usecase.NewDefaultCampaignUsecase(repos.CampaignRepo, repos.CouponRepo, repos.StoreRepo, repos.MemberRepo)

	couponUsecase, err := usecase.NewDefaultCouponUsecase(repos.CouponRepo, repos.CampaignRepo, repos.MemberRepo, gateStock)
	if err != nil {
		return nil, fmt.Errorf("coupon usecase: %w", err)
	}

	return &UseCases{
		CatalogUsecase:    catalogUsecase,
		LedgerUsecase:     ledgerUsecase,
		ValidationUsecase: validationUsecase,
		StoreUsecase:      storeUsecase,
		CampaignUsecase:   campaignUsecase,
		CouponUsecase:     couponUsecase,
		Events:            events,
	}, nil
}
