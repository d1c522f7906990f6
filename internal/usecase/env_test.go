package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CouponEvent
}

func (p *recordingPublisher) PublishCouponEvent(event domain.CouponEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) kinds() []domain.CouponEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.CouponEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

// env wires every usecase over one in-memory repository with a movable clock.
type env struct {
	t        *testing.T
	repo     *memory.Repository
	events   *EventEmitter
	pub      *recordingPublisher
	now      time.Time
	catalog  *DefaultCatalogUsecase
	ledger   *DefaultLedgerUsecase
	validate *DefaultValidationUsecase
	stores   *DefaultStoreUsecase
	camps    *DefaultCampaignUsecase
	coupons  *DefaultCouponUsecase

	owner    *domain.User
	customer *domain.User
	store    *domain.Store
	campaign *domain.Campaign
	coupon   *domain.Coupon
	seq      int
}

func newEnv(t *testing.T, qty int) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{t: t, repo: memory.NewRepository(), pub: &recordingPublisher{}, now: t0}
	clock := func() time.Time { return e.now }
	e.events = NewEventEmitter(e.pub, nil)

	var err error
	e.catalog, err = NewDefaultCatalogUsecase(e.repo, e.repo, e.repo, e.repo, e.repo, nil, e.events, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	e.catalog.Now = clock
	e.ledger = NewDefaultLedgerUsecase(e.repo, e.repo, e.repo)
	e.ledger.Now = clock
	e.validate = NewDefaultValidationUsecase(e.repo, e.repo, e.repo, e.repo, e.repo, e.repo, nil, e.events, nil)
	e.validate.Now = clock
	e.stores = NewDefaultStoreUsecase(e.repo, e.repo, e.repo)
	e.camps = NewDefaultCampaignUsecase(e.repo, e.repo, e.repo, e.repo)
	e.camps.Now = clock
	e.coupons, err = NewDefaultCouponUsecase(e.repo, e.repo, e.repo, nil)
	if err != nil {
		t.Fatalf("coupons: %v", err)
	}
	e.coupons.Now = clock

	e.owner = e.repo.PutUser(&domain.User{Name: "Ana Souza", Email: "ana@padaria.com", Role: domain.RoleLojista})
	e.customer = e.repo.PutUser(&domain.User{Name: "Carlos Lima", Email: "carlos@mail.com", Role: domain.RoleUser})

	e.store = &domain.Store{Name: "Padaria Central", CityID: 1, Status: domain.StoreActive}
	if err := e.repo.CreateStore(ctx, e.store, e.owner.ID); err != nil {
		t.Fatalf("store: %v", err)
	}
	e.campaign = &domain.Campaign{
		StoreID:     e.store.ID,
		Title:       "Semana do pão",
		Description: "Descontos a semana toda",
		StartsAt:    t0.Add(-time.Hour),
		EndsAt:      t0.Add(7 * 24 * time.Hour),
		Status:      domain.CampaignActive,
	}
	if err := e.repo.CreateCampaign(ctx, e.campaign); err != nil {
		t.Fatalf("campaign: %v", err)
	}
	e.coupon = e.addCoupon(qty)
	return e
}

func (e *env) addCoupon(qty int) *domain.Coupon {
	e.t.Helper()
	e.seq++
	c := &domain.Coupon{
		CampaignID:   e.campaign.ID,
		StoreID:      e.store.ID,
		Code:         fmt.Sprintf("TPL%05d", e.seq),
		Type:         domain.DiscountFixed,
		Value:        decimal.NewFromInt(10),
		Quantity:     qty,
		ValidityDays: 1,
		Rules:        domain.Rules{{Key: "1", Text: "Não cumulativo"}},
		Status:       domain.CouponActive,
	}
	if err := e.repo.CreateCoupon(context.Background(), c); err != nil {
		e.t.Fatalf("coupon: %v", err)
	}
	return c
}

func (e *env) newUser(name string) *domain.User {
	return e.repo.PutUser(&domain.User{Name: name, Email: fmt.Sprintf("%s@mail.com", name), Role: domain.RoleUser})
}

func (e *env) claim(userID int64) *domain.CouponInstance {
	e.t.Helper()
	ci, err := e.catalog.Claim(context.Background(), e.coupon.ID, userID)
	if err != nil {
		e.t.Fatalf("claim: %v", err)
	}
	return ci
}
