package redemptiondto

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

// InstanceOutput is a claimed coupon with its read-time status and the
// store and campaign it was claimed from.
type InstanceOutput struct {
	Instance *domain.CouponInstance
	Status   domain.InstanceStatus
	Store    *domain.Store
	Campaign *domain.Campaign
}

// RedemptionDetail is what a merchant sees after resolving a code.
type RedemptionDetail struct {
	InstanceOutput
	User *domain.User
}
