package coupondto

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

// CouponView pairs a template with the status users see for it.
type CouponView struct {
	Coupon *domain.Coupon
	Status domain.CouponStatus
}

type Claimer struct {
	Name      string
	ClaimedAt time.Time
}

type CouponDetailOutput struct {
	CouponView
	Campaign     *domain.Campaign
	Store        *domain.Store
	AlreadyHave  bool
	OtherCoupons []CouponView
	LastClaimers []Claimer
}
