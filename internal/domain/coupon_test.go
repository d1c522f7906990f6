package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCouponEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	live := &Campaign{Status: CampaignActive, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}
	ended := &Campaign{Status: CampaignActive, StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-time.Hour)}

	tests := []struct {
		name     string
		coupon   Coupon
		campaign *Campaign
		want     CouponStatus
	}{
		{"active", Coupon{Status: CouponActive, Quantity: 2, Used: 1}, live, CouponActive},
		{"exhausted despite ATIVO flag", Coupon{Status: CouponActive, Quantity: 2, Used: 2}, live, CouponExhausted},
		{"inactive wins", Coupon{Status: CouponInactive, Quantity: 2, Used: 2}, live, CouponInactive},
		{"campaign ended", Coupon{Status: CouponActive, Quantity: 2}, ended, CouponExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.EffectiveStatus(tt.campaign, now); got != tt.want {
				t.Fatalf("EffectiveStatus = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckClaimable(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	pending := &Campaign{Status: CampaignActive, StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)}
	suspended := &Campaign{Status: CampaignSuspended, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}
	live := &Campaign{Status: CampaignActive, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}

	store := &Store{Status: StoreActive}
	c := &Coupon{Status: CouponActive, Quantity: 1}
	if err := c.CheckClaimable(live, store, now); err != nil {
		t.Fatalf("live campaign: %v", err)
	}
	if err := c.CheckClaimable(pending, store, now); !errors.Is(err, ErrCouponUnavailable) {
		t.Fatalf("pending campaign err = %v", err)
	}
	if err := c.CheckClaimable(suspended, store, now); !errors.Is(err, ErrCouponUnavailable) {
		t.Fatalf("suspended campaign err = %v", err)
	}
	if err := c.CheckClaimable(live, &Store{Status: StoreInactive}, now); !errors.Is(err, ErrCouponUnavailable) {
		t.Fatalf("disabled store err = %v", err)
	}
	c.Used = 1
	if err := c.CheckClaimable(live, store, now); !errors.Is(err, ErrExhausted) {
		t.Fatalf("exhausted err = %v", err)
	}
}

func TestCouponValidate(t *testing.T) {
	valid := func() Coupon {
		return Coupon{CampaignID: 1, Type: DiscountPercentage, Value: decimal.NewFromInt(20), Quantity: 10, ValidityDays: 7}
	}
	tests := []struct {
		name   string
		mutate func(*Coupon)
		field  string
	}{
		{"ok", func(*Coupon) {}, ""},
		{"no campaign", func(c *Coupon) { c.CampaignID = 0 }, "campanha_id"},
		{"bad type", func(c *Coupon) { c.Type = "pts" }, "tipo"},
		{"zero value", func(c *Coupon) { c.Value = decimal.Zero }, "valor"},
		{"percent over 100", func(c *Coupon) { c.Value = decimal.NewFromFloat(100.5) }, "valor"},
		{"fixed over 100 is fine", func(c *Coupon) { c.Type = DiscountFixed; c.Value = decimal.NewFromInt(250) }, ""},
		{"zero qtd", func(c *Coupon) { c.Quantity = 0 }, "qtd"},
		{"qtd below used", func(c *Coupon) { c.Used = 11 }, "qtd"},
		{"zero validity", func(c *Coupon) { c.ValidityDays = 0 }, "validade"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want field %q", err, tt.field)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatal("validation errors must wrap ErrInvalidInput")
			}
		})
	}
}
