package campaigndto

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

type CreateCampaignInput struct {
	LojistaID   int64
	StoreID     int64
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Status      *domain.CampaignStatus
}

type UpdateCampaignInput struct {
	LojistaID   int64
	ID          int64
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Status      *domain.CampaignStatus
}
