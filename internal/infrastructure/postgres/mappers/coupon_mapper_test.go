package mappers

import (
	"testing"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCouponRulesKeepOrder(t *testing.T) {
	c := &domain.Coupon{
		ID:    3,
		Type:  domain.DiscountPercentage,
		Value: decimal.RequireFromString("12.50"),
		Rules: domain.Rules{{Key: "b", Text: "segundo"}, {Key: "a", Text: "primeiro"}},
	}
	model, err := ToGORMCoupon(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(model.Rules) != `{"b":"segundo","a":"primeiro"}` {
		t.Fatalf("stored rules = %s", model.Rules)
	}
	back, err := ToDomainCoupon(model)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rules[0].Key != "b" || !back.Value.Equal(c.Value) {
		t.Fatalf("coupon = %+v", back)
	}
}

func TestNilRulesStoredAsEmptyObject(t *testing.T) {
	model, err := ToGORMInstance(&domain.CouponInstance{})
	if err != nil {
		t.Fatal(err)
	}
	if string(model.Rules) != "{}" {
		t.Fatalf("rules = %s", model.Rules)
	}
}

func TestSoftDeleteMapsToPointer(t *testing.T) {
	deleted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	model, _ := ToGORMCoupon(&domain.Coupon{})
	model.DeletedAt = gorm.DeletedAt{Time: deleted, Valid: true}

	c, err := ToDomainCoupon(model)
	if err != nil {
		t.Fatal(err)
	}
	if c.DeletedAt == nil || !c.DeletedAt.Equal(deleted) {
		t.Fatalf("DeletedAt = %v", c.DeletedAt)
	}
}
