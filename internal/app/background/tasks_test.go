package background

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/metrics"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *memory.Repository
	customer *domain.User
	coupon   *domain.Coupon
}

func newFixture(t *testing.T, qty int) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()
	owner := repo.PutUser(&domain.User{Name: "Ana", Email: "ana@loja.com", Role: domain.RoleLojista})
	customer := repo.PutUser(&domain.User{Name: "Bia", Email: "bia@mail.com", Role: domain.RoleUser})

	store := &domain.Store{Name: "Loja", CityID: 1, Status: domain.StoreActive}
	if err := repo.CreateStore(ctx, store, owner.ID); err != nil {
		t.Fatalf("store: %v", err)
	}
	campaign := &domain.Campaign{
		StoreID:  store.ID,
		Title:    "Campanha",
		StartsAt: t0.Add(-time.Hour),
		EndsAt:   t0.Add(48 * time.Hour),
		Status:   domain.CampaignActive,
	}
	if err := repo.CreateCampaign(ctx, campaign); err != nil {
		t.Fatalf("campaign: %v", err)
	}
	coupon := &domain.Coupon{
		CampaignID:   campaign.ID,
		StoreID:      store.ID,
		Code:         "TPL00001",
		Type:         domain.DiscountPercentage,
		Value:        decimal.NewFromInt(15),
		Quantity:     qty,
		ValidityDays: 1,
		Status:       domain.CouponActive,
	}
	if err := repo.CreateCoupon(ctx, coupon); err != nil {
		t.Fatalf("coupon: %v", err)
	}
	return &fixture{repo: repo, customer: customer, coupon: coupon}
}

func (f *fixture) claim(t *testing.T, now time.Time) *domain.CouponInstance {
	t.Helper()
	ci, err := f.repo.ClaimCoupon(context.Background(), domain.ClaimOperation{
		CouponID: f.coupon.ID,
		UserID:   f.customer.ID,
		Now:      now,
		NewCode:  func() (string, error) { return "ABCDEFGH", nil },
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	return ci
}

func TestReconcileGateLoadsRemainingStock(t *testing.T) {
	f := newFixture(t, 3)
	f.claim(t, t0)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bt := NewBackgroundTasks(f.repo, f.repo, redis.NewClaimGate(rdb), nil, time.Minute, time.Minute)
	bt.Now = func() time.Time { return t0 }

	if err := bt.ReconcileGate(context.Background()); err != nil {
		t.Fatalf("ReconcileGate: %v", err)
	}
	got, err := mr.Get(fmt.Sprintf("coupon:gate:stock:{%d}", f.coupon.ID))
	if err != nil {
		t.Fatalf("stock key missing: %v", err)
	}
	if got != "2" {
		t.Fatalf("stock = %q, want 2", got)
	}
}

func TestReconcileGateWithoutGateIsNoop(t *testing.T) {
	f := newFixture(t, 3)
	bt := NewBackgroundTasks(f.repo, f.repo, nil, nil, time.Minute, time.Minute)
	if err := bt.ReconcileGate(context.Background()); err != nil {
		t.Fatalf("ReconcileGate: %v", err)
	}
}

func TestRefreshActiveGaugeCountsUnexpired(t *testing.T) {
	f := newFixture(t, 3)
	f.claim(t, t0)

	m := metrics.NewCouponMetrics(prometheus.NewRegistry())
	bt := NewBackgroundTasks(f.repo, f.repo, nil, m, time.Minute, time.Minute)

	bt.Now = func() time.Time { return t0.Add(time.Hour) }
	if err := bt.RefreshActiveGauge(context.Background()); err != nil {
		t.Fatalf("RefreshActiveGauge: %v", err)
	}
	if got := testutil.ToFloat64(m.ActiveInstances); got != 1 {
		t.Fatalf("gauge = %v, want 1", got)
	}

	// Past the 24h validity the instance no longer counts, yet nothing rewrote it.
	bt.Now = func() time.Time { return t0.Add(25 * time.Hour) }
	if err := bt.RefreshActiveGauge(context.Background()); err != nil {
		t.Fatalf("RefreshActiveGauge: %v", err)
	}
	if got := testutil.ToFloat64(m.ActiveInstances); got != 0 {
		t.Fatalf("gauge = %v, want 0", got)
	}
	instances, _ := f.repo.GetInstancesByUserID(context.Background(), f.customer.ID)
	if instances[0].Status != domain.InstanceActive {
		t.Fatalf("stored status = %v", instances[0].Status)
	}
}

func TestStartAllStopsWithContext(t *testing.T) {
	f := newFixture(t, 3)
	m := metrics.NewCouponMetrics(prometheus.NewRegistry())
	bt := NewBackgroundTasks(f.repo, f.repo, nil, m, time.Hour, 10*time.Millisecond)
	bt.Now = func() time.Time { return t0 }
	f.claim(t, t0)

	ctx, cancel := context.WithCancel(context.Background())
	bt.StartAll(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(m.ActiveInstances) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("gauge never refreshed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
}
