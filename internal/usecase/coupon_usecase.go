package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	coupondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/coupon"
)

const maxCodeAttempts = 5

type CouponUsecase interface {
	CreateCoupon(ctx context.Context, input *coupondto.CreateCouponInput) (*domain.Coupon, error)
	UpdateCoupon(ctx context.Context, input *coupondto.UpdateCouponInput) (*domain.Coupon, error)
	DeleteCoupon(ctx context.Context, lojistaID, couponID int64) error
	GetCoupon(ctx context.Context, lojistaID, couponID int64) (*coupondto.CouponView, error)
	ListByCampaign(ctx context.Context, lojistaID, campaignID int64) ([]coupondto.CouponView, error)
	ListByStore(ctx context.Context, lojistaID, storeID int64) ([]coupondto.CouponView, error)
}

// GateStock overwrites the claim gate's stock counters.
type GateStock interface {
	Reconcile(ctx context.Context, stock map[int64]int) error
}

type DefaultCouponUsecase struct {
	couponRepo   domain.CouponRepository
	campaignRepo domain.CampaignRepository
	memberRepo   domain.StoreMemberRepository
	gate         GateStock
	newCode      func() (string, error)
	Now          func() time.Time
}

// NewDefaultCouponUsecase builds the template management usecase. gate may be
// nil when the claim gate is disabled.
func NewDefaultCouponUsecase(
	couponRepo domain.CouponRepository,
	campaignRepo domain.CampaignRepository,
	memberRepo domain.StoreMemberRepository,
	gate GateStock,
) (*DefaultCouponUsecase, error) {
	newCode, err := domain.NewCodeGenerator()
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}
	return &DefaultCouponUsecase{
		couponRepo:   couponRepo,
		campaignRepo: campaignRepo,
		memberRepo:   memberRepo,
		gate:         gate,
		newCode:      newCode,
		Now:          time.Now,
	}, nil
}

func (uc *DefaultCouponUsecase) CreateCoupon(ctx context.Context, input *coupondto.CreateCouponInput) (*domain.Coupon, error) {
	if input.CampaignID <= 0 {
		return nil, &domain.ValidationError{Field: "campanha_id", Reason: "required"}
	}
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.DeletedAt != nil {
		return nil, domain.ErrCampaignNotFound
	}
	if err := uc.member(ctx, campaign.StoreID, input.LojistaID, domain.ErrCampaignNotFound); err != nil {
		return nil, err
	}

	now := uc.Now()
	coupon := &domain.Coupon{
		CampaignID:   campaign.ID,
		StoreID:      campaign.StoreID,
		Code:         domain.NormalizeRedemptionCode(input.Code),
		Type:         input.Type,
		Value:        input.Value,
		Quantity:     input.Quantity,
		ValidityDays: input.ValidityDays,
		Rules:        input.Rules,
		Status:       domain.CouponActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Status != nil {
		coupon.Status = *input.Status
	}
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	if coupon.Code == "" {
		if coupon.Code, err = uc.freeCode(ctx); err != nil {
			return nil, err
		}
	}
	if err := uc.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	uc.syncGate(ctx, coupon)
	return coupon, nil
}

// UpdateCoupon edits the template. Instances already claimed keep the terms
// they were claimed with.
func (uc *DefaultCouponUsecase) UpdateCoupon(ctx context.Context, input *coupondto.UpdateCouponInput) (*domain.Coupon, error) {
	coupon, err := uc.owned(ctx, input.LojistaID, input.ID)
	if err != nil {
		return nil, err
	}
	coupon.Type = input.Type
	coupon.Value = input.Value
	coupon.Quantity = input.Quantity
	coupon.ValidityDays = input.ValidityDays
	coupon.Rules = input.Rules
	if input.Status != nil {
		coupon.Status = *input.Status
	}
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	coupon.UpdatedAt = uc.Now()
	if err := uc.couponRepo.UpdateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	uc.syncGate(ctx, coupon)
	return coupon, nil
}

// syncGate loads the template's remaining units into the claim gate so a
// raised quantity is claimable at once instead of after the next reconcile.
func (uc *DefaultCouponUsecase) syncGate(ctx context.Context, coupon *domain.Coupon) {
	if uc.gate == nil {
		return
	}
	err := uc.gate.Reconcile(context.WithoutCancel(ctx), map[int64]int{coupon.ID: coupon.Remaining()})
	if err != nil {
		slog.Warn("failed to update claim gate stock", "coupon_id", coupon.ID, "error", err)
	}
}

func (uc *DefaultCouponUsecase) DeleteCoupon(ctx context.Context, lojistaID, couponID int64) error {
	if _, err := uc.owned(ctx, lojistaID, couponID); err != nil {
		return err
	}
	return uc.couponRepo.DeleteCoupon(ctx, couponID, uc.Now())
}

func (uc *DefaultCouponUsecase) GetCoupon(ctx context.Context, lojistaID, couponID int64) (*coupondto.CouponView, error) {
	coupon, err := uc.owned(ctx, lojistaID, couponID)
	if err != nil {
		return nil, err
	}
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, coupon.CampaignID)
	if err != nil {
		return nil, err
	}
	return &coupondto.CouponView{Coupon: coupon, Status: coupon.EffectiveStatus(campaign, uc.Now())}, nil
}

func (uc *DefaultCouponUsecase) ListByCampaign(ctx context.Context, lojistaID, campaignID int64) ([]coupondto.CouponView, error) {
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := uc.member(ctx, campaign.StoreID, lojistaID, domain.ErrCampaignNotFound); err != nil {
		return nil, err
	}
	coupons, err := uc.couponRepo.GetCouponsByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := uc.Now()
	out := make([]coupondto.CouponView, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, coupondto.CouponView{Coupon: c, Status: c.EffectiveStatus(campaign, now)})
	}
	return out, nil
}

func (uc *DefaultCouponUsecase) ListByStore(ctx context.Context, lojistaID, storeID int64) ([]coupondto.CouponView, error) {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return nil, err
	}
	coupons, err := uc.couponRepo.GetCouponsByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	now := uc.Now()
	campaigns := map[int64]*domain.Campaign{}
	out := make([]coupondto.CouponView, 0, len(coupons))
	for _, c := range coupons {
		campaign, err := cachedCampaign(ctx, uc.campaignRepo, campaigns, c.CampaignID)
		if err != nil {
			return nil, err
		}
		out = append(out, coupondto.CouponView{Coupon: c, Status: c.EffectiveStatus(campaign, now)})
	}
	return out, nil
}

func (uc *DefaultCouponUsecase) owned(ctx context.Context, lojistaID, couponID int64) (*domain.Coupon, error) {
	coupon, err := uc.couponRepo.GetCouponByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon.DeletedAt != nil {
		return nil, domain.ErrCouponNotFound
	}
	if err := uc.member(ctx, coupon.StoreID, lojistaID, domain.ErrCouponNotFound); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (uc *DefaultCouponUsecase) member(ctx context.Context, storeID, lojistaID int64, hidden error) error {
	err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID)
	if errors.Is(err, domain.ErrStoreNotFound) {
		return hidden
	}
	return err
}

func (uc *DefaultCouponUsecase) freeCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := uc.newCode()
		if err != nil {
			return "", err
		}
		taken, err := uc.couponRepo.CouponCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check coupon code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a free coupon code")
}
