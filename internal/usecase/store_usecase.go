package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	storedto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/store"
)

type StoreUsecase interface {
	CreateStore(ctx context.Context, input *storedto.CreateStoreInput) (*domain.Store, error)
	UpdateStore(ctx context.Context, input *storedto.UpdateStoreInput) (*domain.Store, error)
	DisableStore(ctx context.Context, lojistaID, storeID int64) error
	GetStore(ctx context.Context, lojistaID, storeID int64) (*domain.Store, error)
	ListMyStores(ctx context.Context, lojistaID int64) ([]*domain.Store, error)
	ListMembers(ctx context.Context, lojistaID, storeID int64) ([]*domain.StoreMember, error)
	AddMember(ctx context.Context, input *storedto.AddMemberInput) (*domain.StoreMember, error)
	RemoveMember(ctx context.Context, lojistaID, storeID, memberID int64) error
}

type DefaultStoreUsecase struct {
	storeRepo  domain.StoreRepository
	memberRepo domain.StoreMemberRepository
	userRepo   domain.UserRepository
}

func NewDefaultStoreUsecase(
	storeRepo domain.StoreRepository,
	memberRepo domain.StoreMemberRepository,
	userRepo domain.UserRepository,
) *DefaultStoreUsecase {
	return &DefaultStoreUsecase{
		storeRepo:  storeRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

func (uc *DefaultStoreUsecase) CreateStore(ctx context.Context, input *storedto.CreateStoreInput) (*domain.Store, error) {
	store := &domain.Store{Status: domain.StoreActive}
	applyStoreInput(store, &input.StoreInput)
	if err := store.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now

	if err := uc.storeRepo.CreateStore(ctx, store, input.LojistaID); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

func (uc *DefaultStoreUsecase) UpdateStore(ctx context.Context, input *storedto.UpdateStoreInput) (*domain.Store, error) {
	if err := ensureMember(ctx, uc.memberRepo, input.ID, input.LojistaID); err != nil {
		return nil, err
	}
	store, err := uc.storeRepo.GetStoreByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	applyStoreInput(store, &input.StoreInput)
	if input.Active != nil {
		store.Status = domain.StoreInactive
		if *input.Active {
			store.Status = domain.StoreActive
		}
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	store.UpdatedAt = time.Now()

	if err := uc.storeRepo.UpdateStore(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

// DisableStore flips the status flag. Stores are never deleted so that
// coupons claimed from them stay resolvable.
func (uc *DefaultStoreUsecase) DisableStore(ctx context.Context, lojistaID, storeID int64) error {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return err
	}
	store, err := uc.storeRepo.GetStoreByID(ctx, storeID)
	if err != nil {
		return err
	}
	store.Status = domain.StoreInactive
	store.UpdatedAt = time.Now()
	return uc.storeRepo.UpdateStore(ctx, store)
}

func (uc *DefaultStoreUsecase) GetStore(ctx context.Context, lojistaID, storeID int64) (*domain.Store, error) {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return nil, err
	}
	return uc.storeRepo.GetStoreByID(ctx, storeID)
}

func (uc *DefaultStoreUsecase) ListMyStores(ctx context.Context, lojistaID int64) ([]*domain.Store, error) {
	ids, err := uc.memberRepo.GetStoreIDsByLojistaID(ctx, lojistaID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Store{}, nil
	}
	return uc.storeRepo.GetStoresByIDs(ctx, ids)
}

func (uc *DefaultStoreUsecase) ListMembers(ctx context.Context, lojistaID, storeID int64) ([]*domain.StoreMember, error) {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return nil, err
	}
	return uc.memberRepo.GetMembersByStoreID(ctx, storeID)
}

// AddMember invites another lojista account, looked up by e-mail, into the
// store team.
func (uc *DefaultStoreUsecase) AddMember(ctx context.Context, input *storedto.AddMemberInput) (*domain.StoreMember, error) {
	if err := ensureMember(ctx, uc.memberRepo, input.StoreID, input.LojistaID); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "required"}
	}
	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleLojista {
		return nil, domain.ErrNotLojista
	}
	member := &domain.StoreMember{
		StoreID:   input.StoreID,
		LojistaID: user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}
	if err := uc.memberRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (uc *DefaultStoreUsecase) RemoveMember(ctx context.Context, lojistaID, storeID, memberID int64) error {
	if err := ensureMember(ctx, uc.memberRepo, storeID, lojistaID); err != nil {
		return err
	}
	members, err := uc.memberRepo.GetMembersByStoreID(ctx, storeID)
	if err != nil {
		return err
	}
	found := false
	for _, m := range members {
		if m.LojistaID == memberID {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotStoreMember
	}
	if len(members) == 1 {
		return domain.ErrLastMember
	}
	return uc.memberRepo.RemoveMember(ctx, storeID, memberID)
}

func applyStoreInput(store *domain.Store, in *storedto.StoreInput) {
	store.Name = strings.TrimSpace(in.Name)
	store.Address = strings.TrimSpace(in.Address)
	store.CityID = in.CityID
	store.Phone1 = strings.TrimSpace(in.Phone1)
	store.Phone2 = strings.TrimSpace(in.Phone2)
	store.Email = domain.NormalizeEmail(in.Email)
	store.Site = strings.TrimSpace(in.Site)
	store.Logo = in.Logo
	store.Description = in.Description
	store.LocationLink = strings.TrimSpace(in.LocationLink)
	store.CNPJ = strings.TrimSpace(in.CNPJ)
	store.WebhookURL = strings.TrimSpace(in.WebhookURL)
	store.CategoryIDs = in.CategoryIDs
}

// ensureMember hides stores the caller does not belong to behind a not-found.
func ensureMember(ctx context.Context, repo domain.StoreMemberRepository, storeID, lojistaID int64) error {
	ok, err := repo.IsMember(ctx, storeID, lojistaID)
	if err != nil {
		return fmt.Errorf("check store membership: %w", err)
	}
	if !ok {
		return domain.ErrStoreNotFound
	}
	return nil
}
