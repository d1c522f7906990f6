package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultStoreRepository struct {
	DB *gorm.DB
}

func NewDefaultStoreRepository(db *gorm.DB) *DefaultStoreRepository {
	return &DefaultStoreRepository{DB: db}
}

// CreateStore inserts the store, its categories and the owner membership in
// one transaction.
func (r *DefaultStoreRepository) CreateStore(ctx context.Context, store *domain.Store, ownerID int64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := mappers.ToGORMStore(store)
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("insert store: %w", err)
		}
		store.ID = model.ID
		if err := replaceCategories(tx, store.ID, store.CategoryIDs); err != nil {
			return err
		}
		member := &models.StoreMemberModel{StoreID: store.ID, LojistaID: ownerID, CreatedAt: store.CreatedAt}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
}

func (r *DefaultStoreRepository) UpdateStore(ctx context.Context, store *domain.Store) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.StoreModel{}).Where("id = ?", store.ID).Select("*").Omit("id", "created_at").Updates(mappers.ToGORMStore(store))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStoreNotFound
		}
		return replaceCategories(tx, store.ID, store.CategoryIDs)
	})
}

func replaceCategories(tx *gorm.DB, storeID int64, categoryIDs []int64) error {
	if err := tx.Where("loja_id = ?", storeID).Delete(&models.StoreCategoryModel{}).Error; err != nil {
		return fmt.Errorf("clear store categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]models.StoreCategoryModel, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, models.StoreCategoryModel{StoreID: storeID, CategoryID: id})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert store categories: %w", err)
	}
	return nil
}

func (r *DefaultStoreRepository) GetStoreByID(ctx context.Context, id int64) (*domain.Store, error) {
	stores, err := r.GetStoresByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, domain.ErrStoreNotFound
	}
	return stores[0], nil
}

func (r *DefaultStoreRepository) GetStoresByIDs(ctx context.Context, ids []int64) ([]*domain.Store, error) {
	if len(ids) == 0 {
		return []*domain.Store{}, nil
	}
	var storeModels []models.StoreModel
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&storeModels).Error; err != nil {
		return nil, err
	}
	var links []models.StoreCategoryModel
	if err := r.DB.WithContext(ctx).Where("loja_id IN ?", ids).Order("categoria_id").Find(&links).Error; err != nil {
		return nil, err
	}
	categories := map[int64][]int64{}
	for _, l := range links {
		categories[l.StoreID] = append(categories[l.StoreID], l.CategoryID)
	}

	stores := make([]*domain.Store, 0, len(storeModels))
	for i := range storeModels {
		stores = append(stores, mappers.ToDomainStore(&storeModels[i], categories[storeModels[i].ID]))
	}
	return stores, nil
}

func (r *DefaultStoreRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categoryModels []models.CategoryModel
	if err := r.DB.WithContext(ctx).Order("nome").Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Category, 0, len(categoryModels))
	for i := range categoryModels {
		out = append(out, mappers.ToDomainCategory(&categoryModels[i]))
	}
	return out, nil
}

// members

func (r *DefaultStoreRepository) AddMember(ctx context.Context, member *domain.StoreMember) error {
	model := &models.StoreMemberModel{StoreID: member.StoreID, LojistaID: member.LojistaID, CreatedAt: member.CreatedAt}
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyMember
		}
		return err
	}
	member.ID = model.ID
	return nil
}

func (r *DefaultStoreRepository) RemoveMember(ctx context.Context, storeID, lojistaID int64) error {
	res := r.DB.WithContext(ctx).Where("loja_id = ? AND lojista_id = ?", storeID, lojistaID).Delete(&models.StoreMemberModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotStoreMember
	}
	return nil
}

type memberRow struct {
	models.StoreMemberModel
	Name  string `gorm:"column:nome"`
	Email string `gorm:"column:email"`
}

func (r *DefaultStoreRepository) GetMembersByStoreID(ctx context.Context, storeID int64) ([]*domain.StoreMember, error) {
	var rows []memberRow
	err := r.DB.WithContext(ctx).
		Table("loja_membros").
		Select("loja_membros.*, usuarios.nome, usuarios.email").
		Joins("LEFT JOIN usuarios ON usuarios.id = loja_membros.lojista_id").
		Where("loja_membros.loja_id = ?", storeID).
		Order("loja_membros.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.StoreMember, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.StoreMember{
			ID:        row.ID,
			StoreID:   row.StoreID,
			LojistaID: row.LojistaID,
			Name:      row.Name,
			Email:     row.Email,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *DefaultStoreRepository) GetStoreIDsByLojistaID(ctx context.Context, lojistaID int64) ([]int64, error) {
	ids := []int64{}
	err := r.DB.WithContext(ctx).Model(&models.StoreMemberModel{}).
		Where("lojista_id = ?", lojistaID).
		Order("loja_id").
		Pluck("loja_id", &ids).Error
	return ids, err
}

func (r *DefaultStoreRepository) IsMember(ctx context.Context, storeID, lojistaID int64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.StoreMemberModel{}).
		Where("loja_id = ? AND lojista_id = ?", storeID, lojistaID).
		Count(&count).Error
	return count > 0, err
}
