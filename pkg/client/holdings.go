package client

import (
	"context"
	"errors"
	"sync"
)

// Claimer is the part of Client that Holdings needs.
type Claimer interface {
	Claim(ctx context.Context, couponID int64) (*Instance, error)
}

// Holdings tracks which coupons the user already has, so the catalog can show
// "already have it" the moment the user taps claim. The mark is optimistic:
// it is rolled back unless the server confirms the claim.
type Holdings struct {
	mu   sync.Mutex
	held map[int64]bool
	api  Claimer
}

func NewHoldings(api Claimer) *Holdings {
	return &Holdings{held: map[int64]bool{}, api: api}
}

func (h *Holdings) Has(couponID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.held[couponID]
}

// Sync replaces the marks with the coupons of the user's active instances.
func (h *Holdings) Sync(instances []Instance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.held = map[int64]bool{}
	for _, in := range instances {
		if in.Status == StatusActive {
			h.held[in.CouponID] = true
		}
	}
}

// Claim marks couponID as held, then claims it. On failure the mark is
// removed again, except when the server says the user already holds it.
func (h *Holdings) Claim(ctx context.Context, couponID int64) (*Instance, error) {
	h.mu.Lock()
	if h.held[couponID] {
		h.mu.Unlock()
		return nil, ErrAlreadyClaimed
	}
	h.held[couponID] = true
	h.mu.Unlock()

	in, err := h.api.Claim(ctx, couponID)
	if err != nil && !errors.Is(err, ErrAlreadyClaimed) {
		h.mu.Lock()
		delete(h.held, couponID)
		h.mu.Unlock()
	}
	return in, err
}

// Release drops the mark, for example after the instance was used.
func (h *Holdings) Release(couponID int64) {
	h.mu.Lock()
	delete(h.held, couponID)
	h.mu.Unlock()
}
