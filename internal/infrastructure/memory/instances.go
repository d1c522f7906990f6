package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

const maxCodeAttempts = 5

// ClaimCoupon runs the whole check-and-decrement under the repository lock.
func (r *Repository) ClaimCoupon(_ context.Context, op domain.ClaimOperation) (*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[op.CouponID]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	if r.hasActiveLocked(op.CouponID, op.UserID, op.Now) {
		return nil, domain.ErrAlreadyClaimed
	}
	if err := coupon.CheckClaimable(r.campaigns[coupon.CampaignID], r.stores[coupon.StoreID], op.Now); err != nil {
		return nil, err
	}

	code, err := r.freeCodeLocked(op.NewCode)
	if err != nil {
		return nil, err
	}

	coupon.Used++
	ci := coupon.NewInstance(op.UserID, code, op.Now)
	ci.ID = r.nextID()
	r.instances[ci.ID] = copyInstance(ci)
	return ci, nil
}

func (r *Repository) freeCodeLocked(newCode func() (string, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := newCode()
		if err != nil {
			return "", err
		}
		if _, taken := r.instanceByCodeLocked(code); !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a free redemption code")
}

func (r *Repository) instanceByCodeLocked(code string) (*domain.CouponInstance, bool) {
	for _, ci := range r.instances {
		if ci.Code == code {
			return ci, true
		}
	}
	return nil, false
}

func (r *Repository) hasActiveLocked(couponID, userID int64, now time.Time) bool {
	for _, ci := range r.instances {
		if ci.CouponID == couponID && ci.UserID == userID && ci.EffectiveStatus(now) == domain.InstanceActive {
			return true
		}
	}
	return false
}

func (r *Repository) ConfirmUse(_ context.Context, op domain.UseOperation) (*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.instanceByCodeLocked(op.Code)
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	ci := copyInstance(stored)
	if op.Check != nil {
		if err := op.Check(ci); err != nil {
			return nil, err
		}
	}
	if err := ci.MarkUsed(op.ValidatorID, op.Now); err != nil {
		return nil, err
	}
	r.instances[ci.ID] = copyInstance(ci)
	return ci, nil
}

func (r *Repository) GetInstanceByID(_ context.Context, id int64) (*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ci, ok := r.instances[id]
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return copyInstance(ci), nil
}

func (r *Repository) GetInstanceByCode(_ context.Context, code string) (*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ci, ok := r.instanceByCodeLocked(code)
	if !ok {
		return nil, domain.ErrInstanceNotFound
	}
	return copyInstance(ci), nil
}

func (r *Repository) GetInstancesByUserID(_ context.Context, userID int64) ([]*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.CouponInstance{}
	for _, ci := range r.instances {
		if ci.UserID == userID {
			out = append(out, copyInstance(ci))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClaimedAt.Equal(out[j].ClaimedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ClaimedAt.After(out[j].ClaimedAt)
	})
	return out, nil
}

func (r *Repository) HasActiveInstance(_ context.Context, couponID, userID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasActiveLocked(couponID, userID, now), nil
}

func (r *Repository) GetRecentClaims(_ context.Context, couponID int64, limit int) ([]*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.CouponInstance{}
	for _, ci := range r.instances {
		if ci.CouponID == couponID {
			out = append(out, copyInstance(ci))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) GetLastValidated(_ context.Context, storeIDs []int64, limit int) ([]*domain.CouponInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.CouponInstance{}
	for _, ci := range r.instances {
		if ci.Status == domain.InstanceUsed && containsID(storeIDs, ci.StoreID) {
			out = append(out, copyInstance(ci))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsedAt.Equal(*out[j].UsedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UsedAt.After(*out[j].UsedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) CountActiveInstances(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ci := range r.instances {
		if ci.EffectiveStatus(now) == domain.InstanceActive {
			n++
		}
	}
	return n, nil
}
