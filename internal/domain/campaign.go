package domain

import (
	"context"
	"strings"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/pkg/countdown"
)

type CampaignStatus int

const (
	CampaignInactive  CampaignStatus = 0
	CampaignActive    CampaignStatus = 1
	CampaignSuspended CampaignStatus = 2
	CampaignFinished  CampaignStatus = 3
)

type Campaign struct {
	ID          int64
	StoreID     int64
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Status      CampaignStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Window is the time-window phase of the campaign at now.
func (c *Campaign) Window(now time.Time) countdown.Window {
	return countdown.Evaluate(now, c.StartsAt, c.EndsAt)
}

// Claimable reports whether coupons of this campaign can be claimed at now.
func (c *Campaign) Claimable(now time.Time) bool {
	return c.DeletedAt == nil && c.Status == CampaignActive && c.Window(now).Phase == countdown.PhaseActive
}

// Discoverable reports whether the campaign shows up in public listings:
// active status and not yet ended. Pending campaigns are listed with their
// "starts at" countdown.
func (c *Campaign) Discoverable(now time.Time) bool {
	return c.DeletedAt == nil && c.Status == CampaignActive && c.Window(now).Phase != countdown.PhaseEnded
}

func (c *Campaign) Validate() error {
	if c.StoreID <= 0 {
		return invalid("loja_id", "required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return invalid("titulo", "required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return invalid("descricao", "required")
	}
	if !c.EndsAt.After(c.StartsAt) {
		return invalid("data_fim", "must be after data_inicio")
	}
	return nil
}

// ValidateNew adds the creation-only rule that a campaign cannot start before today.
func (c *Campaign) ValidateNew(now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if c.StartsAt.Before(today) {
		return invalid("data_inicio", "cannot be before today")
	}
	return nil
}

type CampaignFilter struct {
	CityID     *int64
	CategoryID *int64
}

type CampaignRepository interface {
	CreateCampaign(ctx context.Context, campaign *Campaign) error
	UpdateCampaign(ctx context.Context, campaign *Campaign) error
	DeleteCampaign(ctx context.Context, id int64, at time.Time) error
	// GetCampaignByID also returns soft-deleted campaigns so that claimed
	// coupons keep their context.
	GetCampaignByID(ctx context.Context, id int64) (*Campaign, error)
	GetCampaignsByStoreIDs(ctx context.Context, storeIDs []int64) ([]*Campaign, error)
	// ListDiscoverableCampaigns returns ATIVA campaigns whose end is after now.
	ListDiscoverableCampaigns(ctx context.Context, now time.Time, filter CampaignFilter) ([]*Campaign, error)
}
