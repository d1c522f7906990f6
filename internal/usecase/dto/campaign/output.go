package campaigndto

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/pkg/countdown"
)

type CampaignOutput struct {
	Campaign      *domain.Campaign
	Store         *domain.Store
	Window        countdown.Window
	ActiveCoupons int
}
