package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type InstanceStatus int

const (
	InstanceInactive  InstanceStatus = 0
	InstanceActive    InstanceStatus = 1
	InstanceUsed      InstanceStatus = 2
	InstanceExpired   InstanceStatus = 3
	InstanceCancelled InstanceStatus = 4
	InstanceBlocked   InstanceStatus = 5
)

func (s InstanceStatus) String() string {
	switch s {
	case InstanceInactive:
		return "INATIVO"
	case InstanceActive:
		return "ATIVO"
	case InstanceUsed:
		return "USADO"
	case InstanceExpired:
		return "EXPIRADO"
	case InstanceCancelled:
		return "CANCELADO"
	case InstanceBlocked:
		return "BLOQUEADO"
	}
	return "DESCONHECIDO"
}

// Terminal states accept no further transitions.
func (s InstanceStatus) Terminal() bool {
	switch s {
	case InstanceUsed, InstanceExpired, InstanceCancelled, InstanceBlocked:
		return true
	}
	return false
}

// CouponInstance is a unit claimed by one user. Terms are a value copy of the
// template at claim time; only the status and use metadata ever change.
type CouponInstance struct {
	ID           int64
	CouponID     int64
	UserID       int64
	StoreID      int64
	CampaignID   int64
	Code         string
	Type         DiscountType
	Value        decimal.Decimal
	Rules        Rules
	ValidityDays int
	ClaimedAt    time.Time
	ExpiresAt    time.Time
	Status       InstanceStatus
	UsedAt       *time.Time
	ValidatedBy  *int64
}

// EffectiveStatus resolves lazy expiry. It is a pure function of the stored
// status, the expiry and now.
func (ci *CouponInstance) EffectiveStatus(now time.Time) InstanceStatus {
	if ci.Status == InstanceActive && now.After(ci.ExpiresAt) {
		return InstanceExpired
	}
	return ci.Status
}

// UsableError maps the effective status to the error a merchant sees.
func (ci *CouponInstance) UsableError(now time.Time) error {
	switch ci.EffectiveStatus(now) {
	case InstanceActive:
		return nil
	case InstanceUsed:
		return ErrAlreadyUsed
	case InstanceExpired:
		return ErrExpired
	case InstanceCancelled:
		return ErrInstanceCancelled
	case InstanceBlocked:
		return ErrInstanceBlocked
	}
	return ErrInstanceNotFound
}

// MarkUsed is the ACTIVE -> USED transition. On error the instance is untouched.
func (ci *CouponInstance) MarkUsed(validatorID int64, now time.Time) error {
	if err := ci.UsableError(now); err != nil {
		return err
	}
	ci.Status = InstanceUsed
	usedAt := now
	ci.UsedAt = &usedAt
	ci.ValidatedBy = &validatorID
	return nil
}

// DisplayCode formats the code as shown under the QR image: ABCD-EFGH.
func (ci *CouponInstance) DisplayCode() string {
	return FormatRedemptionCode(ci.Code)
}

// ClaimOperation describes one claim attempt. NewCode is called under the
// template lock until it yields a code that is not taken.
type ClaimOperation struct {
	CouponID int64
	UserID   int64
	Now      time.Time
	NewCode  func() (string, error)
}

// UseOperation describes one confirm attempt. Check runs under the instance
// lock before the transition and may veto it.
type UseOperation struct {
	Code        string
	ValidatorID int64
	Now         time.Time
	Check       func(*CouponInstance) error
}

type CouponInstanceRepository interface {
	ClaimCoupon(ctx context.Context, op ClaimOperation) (*CouponInstance, error)
	ConfirmUse(ctx context.Context, op UseOperation) (*CouponInstance, error)
	GetInstanceByID(ctx context.Context, id int64) (*CouponInstance, error)
	GetInstanceByCode(ctx context.Context, code string) (*CouponInstance, error)
	// GetInstancesByUserID orders by claim time, newest first.
	GetInstancesByUserID(ctx context.Context, userID int64) ([]*CouponInstance, error)
	HasActiveInstance(ctx context.Context, couponID, userID int64, now time.Time) (bool, error)
	GetRecentClaims(ctx context.Context, couponID int64, limit int) ([]*CouponInstance, error)
	// GetLastValidated orders by use time, newest first.
	GetLastValidated(ctx context.Context, storeIDs []int64, limit int) ([]*CouponInstance, error)
	CountActiveInstances(ctx context.Context, now time.Time) (int64, error)
}
