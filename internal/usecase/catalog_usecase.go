package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
	campaigndto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/campaign"
	coupondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/coupon"
)

const lastClaimersLimit = 5

// ClaimGate is a fast pre-check in front of the claim transaction. Reserve
// reports whether a reservation was taken; a gate with no stock loaded for the
// coupon lets the claim through unreserved.
type ClaimGate interface {
	Reserve(ctx context.Context, couponID, userID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, couponID, userID int64) error
	Forget(ctx context.Context, couponID, userID int64) error
}

type CatalogUsecase interface {
	ListActiveCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]*campaigndto.CampaignOutput, error)
	ListActiveCoupons(ctx context.Context, campaignID int64) ([]coupondto.CouponView, error)
	GetCouponDetail(ctx context.Context, couponID, userID int64) (*coupondto.CouponDetailOutput, error)
	Claim(ctx context.Context, couponID, userID int64) (*domain.CouponInstance, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type DefaultCatalogUsecase struct {
	couponRepo   domain.CouponRepository
	campaignRepo domain.CampaignRepository
	instanceRepo domain.CouponInstanceRepository
	storeRepo    domain.StoreRepository
	userRepo     domain.UserRepository
	gate         ClaimGate
	events       *EventEmitter
	metrics      *metrics.CouponMetrics
	newCode      func() (string, error)
	Now          func() time.Time
}

func NewDefaultCatalogUsecase(
	couponRepo domain.CouponRepository,
	campaignRepo domain.CampaignRepository,
	instanceRepo domain.CouponInstanceRepository,
	storeRepo domain.StoreRepository,
	userRepo domain.UserRepository,
	gate ClaimGate,
	events *EventEmitter,
	couponMetrics *metrics.CouponMetrics,
) (*DefaultCatalogUsecase, error) {
	newCode, err := domain.NewCodeGenerator()
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}
	return &DefaultCatalogUsecase{
		couponRepo:   couponRepo,
		campaignRepo: campaignRepo,
		instanceRepo: instanceRepo,
		storeRepo:    storeRepo,
		userRepo:     userRepo,
		gate:         gate,
		events:       events,
		metrics:      couponMetrics,
		newCode:      newCode,
		Now:          time.Now,
	}, nil
}

func (uc *DefaultCatalogUsecase) ListActiveCampaigns(ctx context.Context, filter domain.CampaignFilter) ([]*campaigndto.CampaignOutput, error) {
	now := uc.Now()
	campaigns, err := uc.campaignRepo.ListDiscoverableCampaigns(ctx, now, filter)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	storeIDs := make([]int64, 0, len(campaigns))
	for _, c := range campaigns {
		storeIDs = append(storeIDs, c.StoreID)
	}
	stores, err := uc.storeRepo.GetStoresByIDs(ctx, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}
	byID := make(map[int64]*domain.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}

	out := make([]*campaigndto.CampaignOutput, 0, len(campaigns))
	for _, c := range campaigns {
		store, ok := byID[c.StoreID]
		if !ok || !store.IsActive() || !c.Discoverable(now) {
			continue
		}
		coupons, err := uc.couponRepo.GetCouponsByCampaignID(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load coupons of campaign %d: %w", c.ID, err)
		}
		active := 0
		for _, cp := range coupons {
			if cp.EffectiveStatus(c, now) == domain.CouponActive {
				active++
			}
		}
		out = append(out, &campaigndto.CampaignOutput{
			Campaign:      c,
			Store:         store,
			Window:        c.Window(now),
			ActiveCoupons: active,
		})
	}
	return out, nil
}

// ListActiveCoupons returns the templates a user may claim right now. A
// campaign that is not live yields an empty list.
func (uc *DefaultCatalogUsecase) ListActiveCoupons(ctx context.Context, campaignID int64) ([]coupondto.CouponView, error) {
	now := uc.Now()
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.Claimable(now) {
		return []coupondto.CouponView{}, nil
	}
	coupons, err := uc.couponRepo.GetCouponsByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load coupons: %w", err)
	}
	return activeViews(coupons, campaign, now, 0), nil
}

func (uc *DefaultCatalogUsecase) GetCouponDetail(ctx context.Context, couponID, userID int64) (*coupondto.CouponDetailOutput, error) {
	now := uc.Now()
	coupon, err := uc.couponRepo.GetCouponByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, coupon.CampaignID)
	if err != nil {
		return nil, err
	}
	store, err := uc.storeRepo.GetStoreByID(ctx, coupon.StoreID)
	if err != nil {
		return nil, err
	}

	have, err := uc.instanceRepo.HasActiveInstance(ctx, couponID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("check holdings: %w", err)
	}

	siblings, err := uc.couponRepo.GetCouponsByCampaignID(ctx, coupon.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign coupons: %w", err)
	}

	recent, err := uc.instanceRepo.GetRecentClaims(ctx, couponID, lastClaimersLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent claims: %w", err)
	}
	claimers := make([]coupondto.Claimer, 0, len(recent))
	for _, ci := range recent {
		user, err := uc.userRepo.GetUserByID(ctx, ci.UserID)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		claimers = append(claimers, coupondto.Claimer{Name: user.FirstName(), ClaimedAt: ci.ClaimedAt})
	}

	return &coupondto.CouponDetailOutput{
		CouponView:   coupondto.CouponView{Coupon: coupon, Status: coupon.EffectiveStatus(campaign, now)},
		Campaign:     campaign,
		Store:        store,
		AlreadyHave:  have,
		OtherCoupons: activeViews(siblings, campaign, now, couponID),
		LastClaimers: claimers,
	}, nil
}

// Claim hands one unit of a template to the user. The repository serialises
// claims per template; the gate, when present, only rejects early.
func (uc *DefaultCatalogUsecase) Claim(ctx context.Context, couponID, userID int64) (*domain.CouponInstance, error) {
	start := time.Now()
	coupon, err := uc.couponRepo.GetCouponByID(ctx, couponID)
	if err != nil {
		uc.recordClaim(0, err, start)
		return nil, err
	}

	reserved := false
	if uc.gate != nil {
		ttl := time.Duration(coupon.ValidityDays) * 24 * time.Hour
		reserved, err = uc.gate.Reserve(ctx, couponID, userID, ttl)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExhausted):
				uc.metrics.RecordGateRejection("exhausted")
				uc.recordClaim(coupon.StoreID, err, start)
				return nil, err
			case errors.Is(err, domain.ErrAlreadyClaimed):
				uc.metrics.RecordGateRejection("already_claimed")
				uc.recordClaim(coupon.StoreID, err, start)
				return nil, err
			}
			slog.Warn("claim gate unavailable, falling back to database", "coupon_id", couponID, "error", err)
		}
	}

	instance, err := uc.instanceRepo.ClaimCoupon(ctx, domain.ClaimOperation{
		CouponID: couponID,
		UserID:   userID,
		Now:      uc.Now(),
		NewCode:  uc.newCode,
	})
	if err != nil {
		if reserved {
			if relErr := uc.gate.Release(context.WithoutCancel(ctx), couponID, userID); relErr != nil {
				slog.Error("failed to release claim gate reservation", "coupon_id", couponID, "user_id", userID, "error", relErr)
			}
		}
		uc.recordClaim(coupon.StoreID, err, start)
		return nil, err
	}

	uc.recordClaim(coupon.StoreID, nil, start)
	slog.Info("coupon claimed", "coupon_id", couponID, "user_id", userID, "instance_id", instance.ID)
	uc.events.Emit(domain.EventCouponClaimed, instance)
	return instance, nil
}

func (uc *DefaultCatalogUsecase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return uc.storeRepo.ListCategories(ctx)
}

func (uc *DefaultCatalogUsecase) recordClaim(storeID int64, err error, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordClaim(storeID, claimResult(err), time.Since(start).Seconds())
}

func claimResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, domain.ErrCouponUnavailable):
		return "unavailable"
	case domain.IsNotFound(err):
		return "not_found"
	}
	return "error"
}

// activeViews keeps the templates whose effective status is active, skipping
// exclude.
func activeViews(coupons []*domain.Coupon, campaign *domain.Campaign, now time.Time, exclude int64) []coupondto.CouponView {
	out := make([]coupondto.CouponView, 0, len(coupons))
	for _, c := range coupons {
		if c.ID == exclude {
			continue
		}
		if status := c.EffectiveStatus(campaign, now); status == domain.CouponActive {
			out = append(out, coupondto.CouponView{Coupon: c, Status: status})
		}
	}
	return out
}
