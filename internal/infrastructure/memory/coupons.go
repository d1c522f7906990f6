package memory

import (
	"context"
	"sort"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

func copyCampaign(c *domain.Campaign) *domain.Campaign {
	cp := *c
	return &cp
}

func copyCoupon(c *domain.Coupon) *domain.Coupon {
	cp := *c
	cp.Rules = c.Rules.Clone()
	return &cp
}

func copyInstance(ci *domain.CouponInstance) *domain.CouponInstance {
	cp := *ci
	cp.Rules = ci.Rules.Clone()
	return &cp
}

// campaigns

func (r *Repository) CreateCampaign(_ context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[campaign.StoreID]; !ok {
		return domain.ErrStoreNotFound
	}
	campaign.ID = r.nextID()
	r.campaigns[campaign.ID] = copyCampaign(campaign)
	return nil
}

func (r *Repository) UpdateCampaign(_ context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[campaign.ID]; !ok {
		return domain.ErrCampaignNotFound
	}
	r.campaigns[campaign.ID] = copyCampaign(campaign)
	return nil
}

func (r *Repository) DeleteCampaign(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrCampaignNotFound
	}
	c.DeletedAt = &at
	return nil
}

func (r *Repository) GetCampaignByID(_ context.Context, id int64) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return copyCampaign(c), nil
}

func (r *Repository) GetCampaignsByStoreIDs(_ context.Context, storeIDs []int64) ([]*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range storeIDs {
		wanted[id] = true
	}
	out := []*domain.Campaign{}
	for _, c := range r.campaigns {
		if wanted[c.StoreID] && c.DeletedAt == nil {
			out = append(out, copyCampaign(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (r *Repository) ListDiscoverableCampaigns(_ context.Context, now time.Time, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Campaign{}
	for _, c := range r.campaigns {
		if !c.Discoverable(now) {
			continue
		}
		store, ok := r.stores[c.StoreID]
		if !ok {
			continue
		}
		if filter.CityID != nil && store.CityID != *filter.CityID {
			continue
		}
		if filter.CategoryID != nil && !containsID(store.CategoryIDs, *filter.CategoryID) {
			continue
		}
		out = append(out, copyCampaign(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// coupon templates

func (r *Repository) CreateCoupon(_ context.Context, coupon *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return &domain.ValidationError{Field: "codigo", Reason: "already in use"}
		}
	}
	coupon.ID = r.nextID()
	r.coupons[coupon.ID] = copyCoupon(coupon)
	return nil
}

// UpdateCoupon never lowers the used counter: claims that landed after the
// caller loaded the template are kept.
func (r *Repository) UpdateCoupon(_ context.Context, coupon *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.coupons[coupon.ID]
	if !ok {
		return domain.ErrCouponNotFound
	}
	next := copyCoupon(coupon)
	next.Used = cur.Used
	if next.Quantity < next.Used {
		return &domain.ValidationError{Field: "qtd", Reason: "cannot be lower than units already claimed"}
	}
	r.coupons[coupon.ID] = next
	return nil
}

func (r *Repository) DeleteCoupon(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrCouponNotFound
	}
	c.DeletedAt = &at
	return nil
}

func (r *Repository) GetCouponByID(_ context.Context, id int64) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return copyCoupon(c), nil
}

func (r *Repository) couponsWhere(keep func(*domain.Coupon) bool) []*domain.Coupon {
	out := []*domain.Coupon{}
	for _, c := range r.coupons {
		if c.DeletedAt == nil && keep(c) {
			out = append(out, copyCoupon(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Repository) GetCouponsByCampaignID(_ context.Context, campaignID int64) ([]*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.couponsWhere(func(c *domain.Coupon) bool { return c.CampaignID == campaignID }), nil
}

func (r *Repository) GetCouponsByStoreID(_ context.Context, storeID int64) ([]*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.couponsWhere(func(c *domain.Coupon) bool { return c.StoreID == storeID }), nil
}

func (r *Repository) CouponCodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) ListGateStock(_ context.Context, now time.Time) (map[int64]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]int{}
	for _, c := range r.coupons {
		campaign, ok := r.campaigns[c.CampaignID]
		if !ok || c.DeletedAt != nil || !campaign.Claimable(now) {
			continue
		}
		out[c.ID] = c.Remaining()
	}
	return out, nil
}
