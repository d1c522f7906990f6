package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
	redemptiondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/redemption"
)

const lastValidatedLimit = 20

type ValidationUsecase interface {
	Resolve(ctx context.Context, code string, merchantID int64) (*redemptiondto.RedemptionDetail, error)
	ConfirmUse(ctx context.Context, code string, merchantID int64, userEmail string) (*redemptiondto.RedemptionDetail, error)
	LastValidated(ctx context.Context, merchantID int64) ([]*redemptiondto.RedemptionDetail, error)
}

type DefaultValidationUsecase struct {
	instanceRepo domain.CouponInstanceRepository
	memberRepo   domain.StoreMemberRepository
	storeRepo    domain.StoreRepository
	campaignRepo domain.CampaignRepository
	userRepo     domain.UserRepository
	audit        domain.ValidationAttemptRepository
	gate         ClaimGate
	events       *EventEmitter
	metrics      *metrics.CouponMetrics
	Now          func() time.Time
}

func NewDefaultValidationUsecase(
	instanceRepo domain.CouponInstanceRepository,
	memberRepo domain.StoreMemberRepository,
	storeRepo domain.StoreRepository,
	campaignRepo domain.CampaignRepository,
	userRepo domain.UserRepository,
	audit domain.ValidationAttemptRepository,
	gate ClaimGate,
	events *EventEmitter,
	couponMetrics *metrics.CouponMetrics,
) *DefaultValidationUsecase {
	return &DefaultValidationUsecase{
		instanceRepo: instanceRepo,
		memberRepo:   memberRepo,
		storeRepo:    storeRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		audit:        audit,
		gate:         gate,
		events:       events,
		metrics:      couponMetrics,
		Now:          time.Now,
	}
}

// Resolve maps a scanned or typed code to the claimed coupon behind it.
// Codes of stores the merchant does not work for are reported as unknown.
func (uc *DefaultValidationUsecase) Resolve(ctx context.Context, code string, merchantID int64) (*redemptiondto.RedemptionDetail, error) {
	start := time.Now()
	code = domain.NormalizeRedemptionCode(code)

	ci, err := uc.lookup(ctx, code, merchantID)
	if err == nil {
		err = ci.UsableError(uc.Now())
	}
	uc.record(ctx, domain.ActionResolve, code, merchantID, ci, err, start)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, ci, uc.Now(), nil)
}

// ConfirmUse performs the irreversible ACTIVE -> USED transition. userEmail,
// when given, must be the e-mail of the user the code was resolved to.
func (uc *DefaultValidationUsecase) ConfirmUse(ctx context.Context, code string, merchantID int64, userEmail string) (*redemptiondto.RedemptionDetail, error) {
	start := time.Now()
	code = domain.NormalizeRedemptionCode(code)

	ci, err := uc.lookup(ctx, code, merchantID)
	if err != nil {
		uc.record(ctx, domain.ActionConfirm, code, merchantID, nil, err, start)
		return nil, err
	}
	owner, err := uc.userRepo.GetUserByID(ctx, ci.UserID)
	if err != nil {
		uc.record(ctx, domain.ActionConfirm, code, merchantID, ci, err, start)
		return nil, fmt.Errorf("load coupon owner: %w", err)
	}
	if userEmail != "" && domain.NormalizeEmail(userEmail) != domain.NormalizeEmail(owner.Email) {
		uc.record(ctx, domain.ActionConfirm, code, merchantID, ci, domain.ErrCodeMismatch, start)
		return nil, domain.ErrCodeMismatch
	}

	used, err := uc.instanceRepo.ConfirmUse(ctx, domain.UseOperation{
		Code:        code,
		ValidatorID: merchantID,
		Now:         uc.Now(),
		Check: func(locked *domain.CouponInstance) error {
			if locked.UserID != owner.ID {
				return domain.ErrCodeMismatch
			}
			return nil
		},
	})
	uc.record(ctx, domain.ActionConfirm, code, merchantID, ci, err, start)
	if err != nil {
		return nil, err
	}

	slog.Info("coupon used", "instance_id", used.ID, "store_id", used.StoreID, "merchant_id", merchantID)
	value, _ := used.Value.Float64()
	uc.metrics.RecordRedeemed(used.StoreID, string(used.Type), value)
	if uc.gate != nil {
		if err := uc.gate.Forget(context.WithoutCancel(ctx), used.CouponID, used.UserID); err != nil {
			slog.Warn("failed to clear claim gate marker", "coupon_id", used.CouponID, "user_id", used.UserID, "error", err)
		}
	}
	uc.events.Emit(domain.EventCouponUsed, used)

	return uc.detail(ctx, used, uc.Now(), owner)
}

// LastValidated lists the most recent uses across every store the merchant
// works for, newest first.
func (uc *DefaultValidationUsecase) LastValidated(ctx context.Context, merchantID int64) ([]*redemptiondto.RedemptionDetail, error) {
	storeIDs, err := uc.memberRepo.GetStoreIDsByLojistaID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("load merchant stores: %w", err)
	}
	if len(storeIDs) == 0 {
		return []*redemptiondto.RedemptionDetail{}, nil
	}
	instances, err := uc.instanceRepo.GetLastValidated(ctx, storeIDs, lastValidatedLimit)
	if err != nil {
		return nil, fmt.Errorf("load validated coupons: %w", err)
	}
	now := uc.Now()
	out := make([]*redemptiondto.RedemptionDetail, 0, len(instances))
	for _, ci := range instances {
		d, err := uc.detail(ctx, ci, now, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (uc *DefaultValidationUsecase) lookup(ctx context.Context, code string, merchantID int64) (*domain.CouponInstance, error) {
	if code == "" {
		return nil, domain.ErrInstanceNotFound
	}
	ci, err := uc.instanceRepo.GetInstanceByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ok, err := uc.memberRepo.IsMember(ctx, ci.StoreID, merchantID)
	if err != nil {
		return nil, fmt.Errorf("check store membership: %w", err)
	}
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return ci, nil
}

func (uc *DefaultValidationUsecase) detail(ctx context.Context, ci *domain.CouponInstance, now time.Time, owner *domain.User) (*redemptiondto.RedemptionDetail, error) {
	store, err := uc.storeRepo.GetStoreByID(ctx, ci.StoreID)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, ci.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if owner == nil {
		owner, err = uc.userRepo.GetUserByID(ctx, ci.UserID)
		if err != nil {
			return nil, fmt.Errorf("load coupon owner: %w", err)
		}
	}
	return &redemptiondto.RedemptionDetail{
		InstanceOutput: redemptiondto.InstanceOutput{
			Instance: ci,
			Status:   ci.EffectiveStatus(now),
			Store:    store,
			Campaign: campaign,
		},
		User: owner,
	}, nil
}

// record writes the audit row and the metric for one validation call. Audit
// failures are logged and never change the outcome.
func (uc *DefaultValidationUsecase) record(ctx context.Context, action domain.ValidationAction, code string, merchantID int64, ci *domain.CouponInstance, err error, start time.Time) {
	result := domain.ResultOf(err)
	var storeID int64
	if ci != nil {
		storeID = ci.StoreID
	}
	uc.metrics.RecordValidation(storeID, string(action), result, time.Since(start).Seconds())
	if uc.audit == nil {
		return
	}
	attempt := &domain.ValidationAttempt{
		Code:       code,
		MerchantID: merchantID,
		StoreID:    storeID,
		Action:     action,
		Result:     result,
		CreatedAt:  uc.Now(),
	}
	if auditErr := uc.audit.CreateAttempt(context.WithoutCancel(ctx), attempt); auditErr != nil {
		slog.Error("failed to write validation audit", "code", code, "action", action, "error", auditErr)
	}
}
