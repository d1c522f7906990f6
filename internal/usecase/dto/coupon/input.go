package coupondto

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateCouponInput struct {
	LojistaID    int64
	CampaignID   int64
	Code         string
	Type         domain.DiscountType
	Value        decimal.Decimal
	Quantity     int
	ValidityDays int
	Rules        domain.Rules
	Status       *domain.CouponStatus
}

type UpdateCouponInput struct {
	LojistaID    int64
	ID           int64
	Type         domain.DiscountType
	Value        decimal.Decimal
	Quantity     int
	ValidityDays int
	Rules        domain.Rules
	Status       *domain.CouponStatus
}
