package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "R$"
	DiscountPercentage DiscountType = "%"
)

func (t DiscountType) Valid() bool {
	return t == DiscountFixed || t == DiscountPercentage
}

type CouponStatus int

const (
	CouponInactive  CouponStatus = 0
	CouponActive    CouponStatus = 1
	CouponExhausted CouponStatus = 2
	CouponExpired   CouponStatus = 3
)

func (s CouponStatus) String() string {
	switch s {
	case CouponInactive:
		return "INATIVO"
	case CouponActive:
		return "ATIVO"
	case CouponExhausted:
		return "ESGOTADO"
	case CouponExpired:
		return "EXPIRADO"
	}
	return "DESCONHECIDO"
}

// Coupon is a claimable template owned by a campaign.
type Coupon struct {
	ID           int64
	CampaignID   int64
	StoreID      int64
	Code         string
	Type         DiscountType
	Value        decimal.Decimal
	Quantity     int
	Used         int
	ValidityDays int
	Rules        Rules
	Status       CouponStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

var hundred = decimal.NewFromInt(100)

// Remaining is the number of units still claimable.
func (c *Coupon) Remaining() int {
	if c.Used >= c.Quantity {
		return 0
	}
	return c.Quantity - c.Used
}

// EffectiveStatus derives the status shown to users. Exhaustion wins over the
// stored flag; a campaign that already ended expires its templates.
func (c *Coupon) EffectiveStatus(campaign *Campaign, now time.Time) CouponStatus {
	if c.DeletedAt != nil || c.Status == CouponInactive {
		return CouponInactive
	}
	if c.Used >= c.Quantity {
		return CouponExhausted
	}
	if c.Status == CouponExpired {
		return CouponExpired
	}
	if campaign != nil && campaign.EndsAt.Before(now) {
		return CouponExpired
	}
	return CouponActive
}

// CheckClaimable is the guard evaluated under the template lock during a claim.
func (c *Coupon) CheckClaimable(campaign *Campaign, store *Store, now time.Time) error {
	switch c.EffectiveStatus(campaign, now) {
	case CouponExhausted:
		return ErrExhausted
	case CouponActive:
	default:
		return ErrCouponUnavailable
	}
	if campaign == nil || !campaign.Claimable(now) {
		return ErrCouponUnavailable
	}
	if store == nil || !store.IsActive() {
		return ErrCouponUnavailable
	}
	return nil
}

func (c *Coupon) Validate() error {
	if c.CampaignID <= 0 {
		return invalid("campanha_id", "required")
	}
	if !c.Type.Valid() {
		return invalid("tipo", "must be R$ or %")
	}
	if !c.Value.IsPositive() {
		return invalid("valor", "must be greater than zero")
	}
	if c.Type == DiscountPercentage && c.Value.GreaterThan(hundred) {
		return invalid("valor", "percentage cannot exceed 100")
	}
	if c.Quantity <= 0 {
		return invalid("qtd", "must be greater than zero")
	}
	if c.Quantity < c.Used {
		return invalid("qtd", "cannot be lower than units already claimed")
	}
	if c.ValidityDays <= 0 {
		return invalid("validade", "must be greater than zero")
	}
	return nil
}

// NewInstance copies the claim-time terms onto a fresh instance.
func (c *Coupon) NewInstance(userID int64, code string, now time.Time) *CouponInstance {
	return &CouponInstance{
		CouponID:     c.ID,
		UserID:       userID,
		StoreID:      c.StoreID,
		CampaignID:   c.CampaignID,
		Code:         code,
		Type:         c.Type,
		Value:        c.Value,
		Rules:        c.Rules.Clone(),
		ValidityDays: c.ValidityDays,
		ClaimedAt:    now,
		ExpiresAt:    now.Add(time.Duration(c.ValidityDays) * 24 * time.Hour),
		Status:       InstanceActive,
	}
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) error
	UpdateCoupon(ctx context.Context, coupon *Coupon) error
	DeleteCoupon(ctx context.Context, id int64, at time.Time) error
	// GetCouponByID also returns soft-deleted templates.
	GetCouponByID(ctx context.Context, id int64) (*Coupon, error)
	GetCouponsByCampaignID(ctx context.Context, campaignID int64) ([]*Coupon, error)
	GetCouponsByStoreID(ctx context.Context, storeID int64) ([]*Coupon, error)
	CouponCodeExists(ctx context.Context, code string) (bool, error)
	// ListGateStock returns remaining units per template for every template of
	// a claimable campaign.
	ListGateStock(ctx context.Context, now time.Time) (map[int64]int, error)
}
