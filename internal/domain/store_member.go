package domain

import (
	"context"
	"time"
)

// StoreMember links a lojista account to a store team.
type StoreMember struct {
	ID        int64
	StoreID   int64
	LojistaID int64
	Name      string
	Email     string
	CreatedAt time.Time
}

type StoreMemberRepository interface {
	AddMember(ctx context.Context, member *StoreMember) error
	RemoveMember(ctx context.Context, storeID, lojistaID int64) error
	GetMembersByStoreID(ctx context.Context, storeID int64) ([]*StoreMember, error)
	GetStoreIDsByLojistaID(ctx context.Context, lojistaID int64) ([]int64, error)
	IsMember(ctx context.Context, storeID, lojistaID int64) (bool, error)
}
