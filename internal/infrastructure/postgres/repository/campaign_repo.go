package repository

import (
	"context"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type DefaultCampaignRepository struct {
	DB *gorm.DB
}

func NewDefaultCampaignRepository(db *gorm.DB) *DefaultCampaignRepository {
	return &DefaultCampaignRepository{DB: db}
}

func (r *DefaultCampaignRepository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	model := mappers.ToGORMCampaign(campaign)
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	campaign.ID = model.ID
	return nil
}

func (r *DefaultCampaignRepository) UpdateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	res := r.DB.WithContext(ctx).Model(&models.CampaignModel{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]interface{}{
			"titulo":      campaign.Title,
			"descricao":   campaign.Description,
			"data_inicio": campaign.StartsAt,
			"data_fim":    campaign.EndsAt,
			"status":      int(campaign.Status),
			"updated_at":  campaign.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *DefaultCampaignRepository) DeleteCampaign(ctx context.Context, id int64, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.CampaignModel{}).Where("id = ?", id).Update("deleted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r *DefaultCampaignRepository) GetCampaignByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	var model models.CampaignModel
	if err := r.DB.WithContext(ctx).Unscoped().First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrCampaignNotFound)
	}
	return mappers.ToDomainCampaign(&model), nil
}

func (r *DefaultCampaignRepository) GetCampaignsByStoreIDs(ctx context.Context, storeIDs []int64) ([]*domain.Campaign, error) {
	var campaignModels []models.CampaignModel
	err := r.DB.WithContext(ctx).
		Where("loja_id = ANY(?)", pq.Array(storeIDs)).
		Order("data_inicio DESC").
		Find(&campaignModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCampaigns(campaignModels), nil
}

func (r *DefaultCampaignRepository) ListDiscoverableCampaigns(ctx context.Context, now time.Time, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	query := r.DB.WithContext(ctx).Model(&models.CampaignModel{}).
		Joins("JOIN lojas ON lojas.id = campanhas.loja_id").
		Where("campanhas.status = ?", int(domain.CampaignActive)).
		Where("campanhas.data_fim >= ?", now).
		Where("lojas.status = ?", int(domain.StoreActive))
	if filter.CityID != nil {
		query = query.Where("lojas.cidade_id = ?", *filter.CityID)
	}
	if filter.CategoryID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM loja_categorias lc WHERE lc.loja_id = lojas.id AND lc.categoria_id = ?)", *filter.CategoryID)
	}

	var campaignModels []models.CampaignModel
	if err := query.Order("campanhas.data_fim").Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	return toDomainCampaigns(campaignModels), nil
}

func toDomainCampaigns(campaignModels []models.CampaignModel) []*domain.Campaign {
	out := make([]*domain.Campaign, 0, len(campaignModels))
	for i := range campaignModels {
		out = append(out, mappers.ToDomainCampaign(&campaignModels[i]))
	}
	return out
}
