package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCodeAttempts = 5

var errNoFreeCode = errors.New("could not generate a free redemption code")

type DefaultCouponInstanceRepository struct {
	DB *gorm.DB
}

func NewDefaultCouponInstanceRepository(db *gorm.DB) *DefaultCouponInstanceRepository {
	return &DefaultCouponInstanceRepository{DB: db}
}

// ClaimCoupon locks the template row, re-checks every claim rule under the
// lock and takes one unit with a guarded increment. Concurrent claims on the
// same template queue on the row lock.
func (r *DefaultCouponInstanceRepository) ClaimCoupon(ctx context.Context, op domain.ClaimOperation) (*domain.CouponInstance, error) {
	var claimed *domain.CouponInstance
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var couponModel models.CouponModel
		if err := tx.Unscoped().Clauses(clause.Locking{Strength: "UPDATE"}).First(&couponModel, "id = ?", op.CouponID).Error; err != nil {
			return translate(err, domain.ErrCouponNotFound)
		}
		coupon, err := mappers.ToDomainCoupon(&couponModel)
		if err != nil {
			return err
		}

		active, err := hasActive(tx, op.CouponID, op.UserID, op.Now)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrAlreadyClaimed
		}

		campaign, store, err := claimContext(tx, coupon)
		if err != nil {
			return err
		}
		if err := coupon.CheckClaimable(campaign, store, op.Now); err != nil {
			return err
		}

		res := tx.Model(&models.CouponModel{}).
			Where("id = ? AND usados < qtd", coupon.ID).
			UpdateColumn("usados", gorm.Expr("usados + 1"))
		if res.Error != nil {
			return fmt.Errorf("take unit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrExhausted
		}
		coupon.Used++

		claimed, err = insertWithFreeCode(tx, coupon, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func claimContext(tx *gorm.DB, coupon *domain.Coupon) (*domain.Campaign, *domain.Store, error) {
	var campaignModel models.CampaignModel
	err := tx.Unscoped().First(&campaignModel, "id = ?", coupon.CampaignID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, domain.ErrCouponUnavailable
	}
	if err != nil {
		return nil, nil, err
	}
	var storeModel models.StoreModel
	err = tx.First(&storeModel, "id = ?", coupon.StoreID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, domain.ErrCouponUnavailable
	}
	if err != nil {
		return nil, nil, err
	}
	return mappers.ToDomainCampaign(&campaignModel), mappers.ToDomainStore(&storeModel, nil), nil
}

// insertWithFreeCode retries on a unique-code collision. A savepoint keeps
// the surrounding transaction usable after the failed insert.
func insertWithFreeCode(tx *gorm.DB, coupon *domain.Coupon, op domain.ClaimOperation) (*domain.CouponInstance, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := op.NewCode()
		if err != nil {
			return nil, err
		}
		ci := coupon.NewInstance(op.UserID, code, op.Now)
		model, err := mappers.ToGORMInstance(ci)
		if err != nil {
			return nil, err
		}
		if err := tx.SavePoint("claim_code").Error; err != nil {
			return nil, err
		}
		err = tx.Create(model).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rbErr := tx.RollbackTo("claim_code").Error; rbErr != nil {
				return nil, rbErr
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert instance: %w", err)
		}
		ci.ID = model.ID
		return ci, nil
	}
	return nil, errNoFreeCode
}

func hasActive(db *gorm.DB, couponID, userID int64, now time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.CouponInstanceModel{}).
		Where("cupom_id = ? AND usuario_id = ?", couponID, userID).
		Where("status = ? AND data_expiracao >= ?", int(domain.InstanceActive), now).
		Count(&count).Error
	return count > 0, err
}

// ConfirmUse locks the instance by code so that two merchants confirming the
// same code serialise; the second one sees USED.
func (r *DefaultCouponInstanceRepository) ConfirmUse(ctx context.Context, op domain.UseOperation) (*domain.CouponInstance, error) {
	var used *domain.CouponInstance
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.CouponInstanceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "codigo = ?", op.Code).Error; err != nil {
			return translate(err, domain.ErrInstanceNotFound)
		}
		ci, err := mappers.ToDomainInstance(&model)
		if err != nil {
			return err
		}
		if op.Check != nil {
			if err := op.Check(ci); err != nil {
				return err
			}
		}
		if err := ci.MarkUsed(op.ValidatorID, op.Now); err != nil {
			return err
		}
		err = tx.Model(&models.CouponInstanceModel{}).
			Where("id = ?", ci.ID).
			Updates(map[string]interface{}{
				"status":       int(ci.Status),
				"data_uso":     ci.UsedAt,
				"validado_por": ci.ValidatedBy,
			}).Error
		if err != nil {
			return fmt.Errorf("mark used: %w", err)
		}
		used = ci
		return nil
	})
	if err != nil {
		return nil, err
	}
	return used, nil
}

func (r *DefaultCouponInstanceRepository) GetInstanceByID(ctx context.Context, id int64) (*domain.CouponInstance, error) {
	var model models.CouponInstanceModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrInstanceNotFound)
	}
	return mappers.ToDomainInstance(&model)
}

func (r *DefaultCouponInstanceRepository) GetInstanceByCode(ctx context.Context, code string) (*domain.CouponInstance, error) {
	var model models.CouponInstanceModel
	if err := r.DB.WithContext(ctx).First(&model, "codigo = ?", code).Error; err != nil {
		return nil, translate(err, domain.ErrInstanceNotFound)
	}
	return mappers.ToDomainInstance(&model)
}

func (r *DefaultCouponInstanceRepository) GetInstancesByUserID(ctx context.Context, userID int64) ([]*domain.CouponInstance, error) {
	return r.find(r.DB.WithContext(ctx).Where("usuario_id = ?", userID).Order("data_resgate DESC, id DESC"))
}

func (r *DefaultCouponInstanceRepository) HasActiveInstance(ctx context.Context, couponID, userID int64, now time.Time) (bool, error) {
	return hasActive(r.DB.WithContext(ctx), couponID, userID, now)
}

func (r *DefaultCouponInstanceRepository) GetRecentClaims(ctx context.Context, couponID int64, limit int) ([]*domain.CouponInstance, error) {
	return r.find(r.DB.WithContext(ctx).Where("cupom_id = ?", couponID).Order("id DESC").Limit(limit))
}

func (r *DefaultCouponInstanceRepository) GetLastValidated(ctx context.Context, storeIDs []int64, limit int) ([]*domain.CouponInstance, error) {
	return r.find(r.DB.WithContext(ctx).
		Where("loja_id = ANY(?)", pq.Array(storeIDs)).
		Where("status = ?", int(domain.InstanceUsed)).
		Order("data_uso DESC, id DESC").
		Limit(limit))
}

func (r *DefaultCouponInstanceRepository) CountActiveInstances(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.CouponInstanceModel{}).
		Where("status = ? AND data_expiracao >= ?", int(domain.InstanceActive), now).
		Count(&count).Error
	return count, err
}

func (r *DefaultCouponInstanceRepository) find(query *gorm.DB) ([]*domain.CouponInstance, error) {
	var instanceModels []models.CouponInstanceModel
	if err := query.Find(&instanceModels).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.CouponInstance, 0, len(instanceModels))
	for i := range instanceModels {
		ci, err := mappers.ToDomainInstance(&instanceModels[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, nil
}
