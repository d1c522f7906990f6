package repository

import (
	"context"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// DefaultUserRepository reads the user table shared with the auth service.
type DefaultUserRepository struct {
	DB *gorm.DB
}

func NewDefaultUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{DB: db}
}

func (r *DefaultUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var model models.UserModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return mappers.ToDomainUser(&model), nil
}

func (r *DefaultUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model models.UserModel
	if err := r.DB.WithContext(ctx).First(&model, "lower(email) = ?", domain.NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return mappers.ToDomainUser(&model), nil
}
