package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	redemptiondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/redemption"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 320

type LedgerUsecase interface {
	ListMine(ctx context.Context, userID int64) ([]*redemptiondto.InstanceOutput, error)
	GetDetail(ctx context.Context, instanceID, userID int64) (*redemptiondto.InstanceOutput, error)
	QRCode(ctx context.Context, instanceID, userID int64) ([]byte, error)
}

// DefaultLedgerUsecase is the read side of a user's claimed coupons. Every
// status it returns is evaluated at call time.
type DefaultLedgerUsecase struct {
	instanceRepo domain.CouponInstanceRepository
	storeRepo    domain.StoreRepository
	campaignRepo domain.CampaignRepository
	Now          func() time.Time
}

func NewDefaultLedgerUsecase(
	instanceRepo domain.CouponInstanceRepository,
	storeRepo domain.StoreRepository,
	campaignRepo domain.CampaignRepository,
) *DefaultLedgerUsecase {
	return &DefaultLedgerUsecase{
		instanceRepo: instanceRepo,
		storeRepo:    storeRepo,
		campaignRepo: campaignRepo,
		Now:          time.Now,
	}
}

func (uc *DefaultLedgerUsecase) ListMine(ctx context.Context, userID int64) ([]*redemptiondto.InstanceOutput, error) {
	now := uc.Now()
	instances, err := uc.instanceRepo.GetInstancesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	stores := map[int64]*domain.Store{}
	campaigns := map[int64]*domain.Campaign{}
	out := make([]*redemptiondto.InstanceOutput, 0, len(instances))
	for _, ci := range instances {
		store, err := cachedStore(ctx, uc.storeRepo, stores, ci.StoreID)
		if err != nil {
			return nil, err
		}
		campaign, err := cachedCampaign(ctx, uc.campaignRepo, campaigns, ci.CampaignID)
		if err != nil {
			return nil, err
		}
		out = append(out, &redemptiondto.InstanceOutput{
			Instance: ci,
			Status:   ci.EffectiveStatus(now),
			Store:    store,
			Campaign: campaign,
		})
	}
	return out, nil
}

// GetDetail returns one of the user's instances with the store contact data
// needed at the counter. Instances of other users are reported as not found.
func (uc *DefaultLedgerUsecase) GetDetail(ctx context.Context, instanceID, userID int64) (*redemptiondto.InstanceOutput, error) {
	ci, err := uc.instanceRepo.GetInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if ci.UserID != userID {
		return nil, domain.ErrInstanceNotFound
	}
	store, err := uc.storeRepo.GetStoreByID(ctx, ci.StoreID)
	if err != nil {
		return nil, err
	}
	campaign, err := uc.campaignRepo.GetCampaignByID(ctx, ci.CampaignID)
	if err != nil {
		return nil, err
	}
	return &redemptiondto.InstanceOutput{
		Instance: ci,
		Status:   ci.EffectiveStatus(uc.Now()),
		Store:    store,
		Campaign: campaign,
	}, nil
}

// QRCode renders the redemption code the merchant scans as a PNG.
func (uc *DefaultLedgerUsecase) QRCode(ctx context.Context, instanceID, userID int64) ([]byte, error) {
	ci, err := uc.instanceRepo.GetInstanceByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if ci.UserID != userID {
		return nil, domain.ErrInstanceNotFound
	}
	png, err := qrcode.Encode(ci.Code, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

func cachedStore(ctx context.Context, repo domain.StoreRepository, cache map[int64]*domain.Store, id int64) (*domain.Store, error) {
	if s, ok := cache[id]; ok {
		return s, nil
	}
	s, err := repo.GetStoreByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load store %d: %w", id, err)
	}
	cache[id] = s
	return s, nil
}

func cachedCampaign(ctx context.Context, repo domain.CampaignRepository, cache map[int64]*domain.Campaign, id int64) (*domain.Campaign, error) {
	if c, ok := cache[id]; ok {
		return c, nil
	}
	c, err := repo.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load campaign %d: %w", id, err)
	}
	cache[id] = c
	return c, nil
}
