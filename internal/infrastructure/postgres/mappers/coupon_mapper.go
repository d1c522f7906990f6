package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"gorm.io/datatypes"
)

func rulesToJSON(rules domain.Rules) (datatypes.JSON, error) {
	if rules == nil {
		rules = domain.Rules{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func rulesFromJSON(raw datatypes.JSON) (domain.Rules, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rules domain.Rules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

func ToDomainCoupon(model *models.CouponModel) (*domain.Coupon, error) {
	rules, err := rulesFromJSON(model.Rules)
	if err != nil {
		return nil, err
	}
	c := &domain.Coupon{
		ID:           model.ID,
		CampaignID:   model.CampaignID,
		StoreID:      model.StoreID,
		Code:         model.Code,
		Type:         domain.DiscountType(model.Type),
		Value:        model.Value,
		Quantity:     model.Quantity,
		Used:         model.Used,
		ValidityDays: model.ValidityDays,
		Rules:        rules,
		Status:       domain.CouponStatus(model.Status),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		c.DeletedAt = &t
	}
	return c, nil
}

func ToGORMCoupon(coupon *domain.Coupon) (*models.CouponModel, error) {
	rules, err := rulesToJSON(coupon.Rules)
	if err != nil {
		return nil, err
	}
	return &models.CouponModel{
		ID:           coupon.ID,
		CampaignID:   coupon.CampaignID,
		StoreID:      coupon.StoreID,
		Code:         coupon.Code,
		Type:         string(coupon.Type),
		Value:        coupon.Value,
		Quantity:     coupon.Quantity,
		Used:         coupon.Used,
		ValidityDays: coupon.ValidityDays,
		Rules:        rules,
		Status:       int(coupon.Status),
		CreatedAt:    coupon.CreatedAt,
		UpdatedAt:    coupon.UpdatedAt,
	}, nil
}

func ToDomainInstance(model *models.CouponInstanceModel) (*domain.CouponInstance, error) {
	rules, err := rulesFromJSON(model.Rules)
	if err != nil {
		return nil, err
	}
	return &domain.CouponInstance{
		ID:           model.ID,
		CouponID:     model.CouponID,
		UserID:       model.UserID,
		StoreID:      model.StoreID,
		CampaignID:   model.CampaignID,
		Code:         model.Code,
		Type:         domain.DiscountType(model.Type),
		Value:        model.Value,
		Rules:        rules,
		ValidityDays: model.ValidityDays,
		ClaimedAt:    model.ClaimedAt,
		ExpiresAt:    model.ExpiresAt,
		Status:       domain.InstanceStatus(model.Status),
		UsedAt:       model.UsedAt,
		ValidatedBy:  model.ValidatedBy,
	}, nil
}

func ToGORMInstance(ci *domain.CouponInstance) (*models.CouponInstanceModel, error) {
	rules, err := rulesToJSON(ci.Rules)
	if err != nil {
		return nil, err
	}
	return &models.CouponInstanceModel{
		ID:           ci.ID,
		CouponID:     ci.CouponID,
		UserID:       ci.UserID,
		StoreID:      ci.StoreID,
		CampaignID:   ci.CampaignID,
		Code:         ci.Code,
		Type:         string(ci.Type),
		Value:        ci.Value,
		Rules:        rules,
		ValidityDays: ci.ValidityDays,
		ClaimedAt:    ci.ClaimedAt,
		ExpiresAt:    ci.ExpiresAt,
		Status:       int(ci.Status),
		UsedAt:       ci.UsedAt,
		ValidatedBy:  ci.ValidatedBy,
	}, nil
}

func ToGORMValidationAttempt(a *domain.ValidationAttempt) *models.ValidationAttemptModel {
	return &models.ValidationAttemptModel{
		ID:         a.ID,
		Code:       a.Code,
		MerchantID: a.MerchantID,
		StoreID:    a.StoreID,
		Action:     string(a.Action),
		Result:     a.Result,
		CreatedAt:  a.CreatedAt,
	}
}
