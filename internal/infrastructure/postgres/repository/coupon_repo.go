package repository

import (
	"context"
	"errors"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCouponRepository struct {
	DB *gorm.DB
}

func NewDefaultCouponRepository(db *gorm.DB) *DefaultCouponRepository {
	return &DefaultCouponRepository{DB: db}
}

func (r *DefaultCouponRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	model, err := mappers.ToGORMCoupon(coupon)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.ValidationError{Field: "codigo", Reason: "already in use"}
		}
		return err
	}
	coupon.ID = model.ID
	return nil
}

// UpdateCoupon leaves the used counter alone; only claims move it. The
// quantity guard runs in SQL so a concurrent claim cannot push used past qtd.
func (r *DefaultCouponRepository) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	model, err := mappers.ToGORMCoupon(coupon)
	if err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Model(&models.CouponModel{}).
		Where("id = ? AND usados <= ?", coupon.ID, coupon.Quantity).
		Updates(map[string]interface{}{
			"tipo":       string(coupon.Type),
			"valor":      coupon.Value,
			"qtd":        coupon.Quantity,
			"validade":   coupon.ValidityDays,
			"regras":     model.Rules,
			"status":     int(coupon.Status),
			"updated_at": coupon.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetCouponByID(ctx, coupon.ID); err != nil {
			return err
		}
		return &domain.ValidationError{Field: "qtd", Reason: "cannot be lower than units already claimed"}
	}
	return nil
}

func (r *DefaultCouponRepository) DeleteCoupon(ctx context.Context, id int64, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.CouponModel{}).Where("id = ?", id).Update("deleted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func (r *DefaultCouponRepository) GetCouponByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	var model models.CouponModel
	if err := r.DB.WithContext(ctx).Unscoped().First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrCouponNotFound)
	}
	return mappers.ToDomainCoupon(&model)
}

func (r *DefaultCouponRepository) GetCouponsByCampaignID(ctx context.Context, campaignID int64) ([]*domain.Coupon, error) {
	return r.find(r.DB.WithContext(ctx).Where("campanha_id = ?", campaignID))
}

func (r *DefaultCouponRepository) GetCouponsByStoreID(ctx context.Context, storeID int64) ([]*domain.Coupon, error) {
	return r.find(r.DB.WithContext(ctx).Where("loja_id = ?", storeID))
}

func (r *DefaultCouponRepository) find(query *gorm.DB) ([]*domain.Coupon, error) {
	var couponModels []models.CouponModel
	if err := query.Order("id").Find(&couponModels).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Coupon, 0, len(couponModels))
	for i := range couponModels {
		c, err := mappers.ToDomainCoupon(&couponModels[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *DefaultCouponRepository) CouponCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Unscoped().Model(&models.CouponModel{}).Where("codigo = ?", code).Count(&count).Error
	return count > 0, err
}

type gateStockRow struct {
	ID        int64 `gorm:"column:id"`
	Remaining int   `gorm:"column:restante"`
}

func (r *DefaultCouponRepository) ListGateStock(ctx context.Context, now time.Time) (map[int64]int, error) {
	var rows []gateStockRow
	err := r.DB.WithContext(ctx).
		Table("cupons").
		Select("cupons.id, GREATEST(cupons.qtd - cupons.usados, 0) AS restante").
		Joins("JOIN campanhas ON campanhas.id = cupons.campanha_id AND campanhas.deleted_at IS NULL").
		Where("cupons.deleted_at IS NULL").
		Where("campanhas.status = ?", int(domain.CampaignActive)).
		Where("campanhas.data_inicio <= ? AND campanhas.data_fim >= ?", now, now).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Remaining
	}
	return out, nil
}
