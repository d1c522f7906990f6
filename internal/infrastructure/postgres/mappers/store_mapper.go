package mappers

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
)

func ToDomainUser(model *models.UserModel) *domain.User {
	return &domain.User{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
		Phone: model.Phone,
		Role:  domain.Role(model.Role),
	}
}

func ToDomainCategory(model *models.CategoryModel) *domain.Category {
	return &domain.Category{
		ID:    model.ID,
		Name:  model.Name,
		Color: model.Color,
		Icon:  model.Icon,
	}
}

func ToDomainStore(model *models.StoreModel, categoryIDs []int64) *domain.Store {
	return &domain.Store{
		ID:           model.ID,
		Name:         model.Name,
		Address:      model.Address,
		CityID:       model.CityID,
		Phone1:       model.Phone1,
		Phone2:       model.Phone2,
		Email:        model.Email,
		Site:         model.Site,
		Logo:         model.Logo,
		Description:  model.Description,
		LocationLink: model.LocationLink,
		CNPJ:         model.CNPJ,
		WebhookURL:   model.WebhookURL,
		Status:       domain.StoreStatus(model.Status),
		CategoryIDs:  categoryIDs,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMStore(store *domain.Store) *models.StoreModel {
	return &models.StoreModel{
		ID:           store.ID,
		Name:         store.Name,
		Address:      store.Address,
		CityID:       store.CityID,
		Phone1:       store.Phone1,
		Phone2:       store.Phone2,
		Email:        store.Email,
		Site:         store.Site,
		Logo:         store.Logo,
		Description:  store.Description,
		LocationLink: store.LocationLink,
		CNPJ:         store.CNPJ,
		WebhookURL:   store.WebhookURL,
		Status:       int(store.Status),
		CreatedAt:    store.CreatedAt,
		UpdatedAt:    store.UpdatedAt,
	}
}

func ToDomainCampaign(model *models.CampaignModel) *domain.Campaign {
	c := &domain.Campaign{
		ID:          model.ID,
		StoreID:     model.StoreID,
		Title:       model.Title,
		Description: model.Description,
		StartsAt:    model.StartsAt,
		EndsAt:      model.EndsAt,
		Status:      domain.CampaignStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		c.DeletedAt = &t
	}
	return c
}

func ToGORMCampaign(campaign *domain.Campaign) *models.CampaignModel {
	return &models.CampaignModel{
		ID:          campaign.ID,
		StoreID:     campaign.StoreID,
		Title:       campaign.Title,
		Description: campaign.Description,
		StartsAt:    campaign.StartsAt,
		EndsAt:      campaign.EndsAt,
		Status:      int(campaign.Status),
		CreatedAt:   campaign.CreatedAt,
		UpdatedAt:   campaign.UpdatedAt,
	}
}
