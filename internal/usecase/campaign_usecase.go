package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	campaigndto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/campaign"
)

type CampaignUsecase interface {
	CreateCampaign(ctx context.Context, input *campaigndto.CreateCampaignInput) (*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, input *campaigndto.UpdateCampaignInput) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, lojistaID, campaignID int64) error
	GetCampaign(ctx context.Context, lojistaID, campaignID int64) (*campaigndto.CampaignOutput, error)
	ListByStore(ctx context.Context, lojistaID, storeID int64) ([]*campaigndto.CampaignOutput, error)
	ListForLojista(ctx context.Context, lojistaID int64) ([]*campaigndto.CampaignOutput, error)
}

type DefaultCampaignUsecase struct {
	campaignRepo domain.CampaignRepository
	couponRepo   domain.CouponRepository
	storeRepo    domain.StoreRepository
	memberRepo   domain.StoreMemberRepository
	Now          func() time.Time
}

func NewDefaultCampaignUsecase(
	campaignRepo domain.CampaignRepository,
	couponRepo domain.CouponRepository,
	storeRepo domain.StoreRepository,
	memberRepo domain.StoreMemberRepository,
) *DefaultCampaignUsecase {
	return &DefaultCampaignUsecase{
		campaignRepo: campaignRepo,
		couponRepo:   couponRepo,
		storeRepo:    storeRepo,
		memberRepo:   memberRepo,
		Now:          time.Now,
	}
}

func (uc *DefaultCampaignUsecase) CreateCampaign(ctx context.Context, input *campaigndto.CreateCampaignInput) (*domain.Campaign, error) {
	if err := ensureMember(ctx, uc.memberRepo, input.StoreID, input.LojistaID); err != nil {
		return nil, err
	}
	now := uc.Now()
	campaign := &domain.Campaign{
		StoreID:     input.StoreID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Status:      domain.CampaignActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Status != nil {
		campaign.Status = *input.Status
	}
	if err := campaign.ValidateNew(now); err != nil {
		return nil, err
	}
	if err := uc.campaignRepo.CreateCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

func (uc *DefaultCampaignUsecase) UpdateCampaign(ctx context.Context, input *campaigndto.UpdateCampaignInput) (*domain.Campaign, error) {
	campaign, err := uc.owned(ctx, input.LojistaID, input.ID)
	if err != nil {
		return nil, err
	}
	campaign.Title = strings.TrimSpace(input.Title)
	campaign.Description = strings.TrimSpace(input.Description)
	campaign.StartsAt = input.StartsAt
	campaign.EndsAt = input.EndsAt
	if input.Status != nil {
		campaign.Status = *input.Status
	}
	if err := campaign.Validate(); err != nil {
		return nil, err
	}
	campaign.UpdatedAt = uc.Now()
	if err := uc.campaignRepo.UpdateCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	return campaign, nil
}

// DeleteCampaign hides the campaign from every listing. Coupons already
// claimed from it keep working until they expire.
func (uc *DefaultCampaignUsecase) DeleteCampaign(ctx context.Context, lojistaID, campaignID int64) error {
	if _, err := uc.owned(ctx, lojistaID, campaignID); err != nil {
		return err
	}
	return uc.campaignRepo.DeleteCampaign(ctx, campaignID, uc.Now())
}

func (uc *DefaultCampaignUsecase) GetCampaign(ctx context.Context, lojistaID, campaignID int64) (*campaigndto.CampaignOutput, error) {
	campaign, err := uc.owned(ctx, lojistaID, campaignID)
	if err != nil {
		return nil, err
	}
	out, err := uc.outputs(ctx, []*domain.Campaign{campaign})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (uc *DefaultCampaignUsecase) ListByStore(ctx context.Context, lojistaID, storeID int64) ([]*campaigndto.CampaignOutput, error) {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return nil, err
	}
	campaigns, err := uc.campaignRepo.GetCampaignsByStoreIDs(ctx, []int64{storeID})
	if err != nil {
		return nil, err
	}
	return uc.outputs(ctx, campaigns)
}

func (uc *DefaultCampaignUsecase) ListForLojista(ctx context.Context, lojistaID int64) ([]*campaigndto.CampaignOutput, error) {
	storeIDs, err := uc.memberRepo.GetStoreIDsByLojistaID(ctx, lojistaID)
	if err != nil {
		return nil, err
	}
	if len(storeIDs) == 0 {
		return []*campaigndto.CampaignOutput{}, nil
	}
	campaigns, err := uc.campaignRepo.GetCampaignsByStoreIDs(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	return uc.outputs(ctx, campaigns)
}

// owned loads a live campaign the lojista can manage.
func (uc *DefaultCampaignUsecase) owned(ctx context.Context, lojistaID, campaignID int64) (*domain.Campaign, error) {
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.DeletedAt != nil {
		return nil, domain.ErrCampaignNotFound
	}
	if err := ensureMember(ctx, uc.memberRepo, campaign.StoreID, lojistaID); err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return campaign, nil
}

func (uc *DefaultCampaignUsecase) outputs(ctx context.Context, campaigns []*domain.Campaign) ([]*campaigndto.CampaignOutput, error) {
	now := uc.Now()
	stores := map[int64]*domain.Store{}
	out := make([]*campaigndto.CampaignOutput, 0, len(campaigns))
	for _, c := range campaigns {
		store, err := cachedStore(ctx, uc.storeRepo, stores, c.StoreID)
		if err != nil {
			return nil, err
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
