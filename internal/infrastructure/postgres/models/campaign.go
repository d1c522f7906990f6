package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampaignModel struct {
	ID          int64          `gorm:"primaryKey;column:id"`
	StoreID     int64          `gorm:"column:loja_id;index"`
	Title       string         `gorm:"column:titulo"`
	Description string         `gorm:"column:descricao"`
	StartsAt    time.Time      `gorm:"column:data_inicio"`
	EndsAt      time.Time      `gorm:"column:data_fim;index"`
	Status      int            `gorm:"column:status"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (CampaignModel) TableName() string {
	return "campanhas"
}

type CouponModel struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	CampaignID   int64           `gorm:"column:campanha_id;index"`
	StoreID      int64           `gorm:"column:loja_id;index"`
	Code         string          `gorm:"column:codigo;uniqueIndex"`
	Type         string          `gorm:"column:tipo"`
	Value        decimal.Decimal `gorm:"column:valor;type:numeric(10,2)"`
	Quantity     int             `gorm:"column:qtd"`
	Used         int             `gorm:"column:usados"`
	ValidityDays int             `gorm:"column:validade"`
	Rules        datatypes.JSON  `gorm:"column:regras"`
	Status       int             `gorm:"column:status"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (CouponModel) TableName() string {
	return "cupons"
}

type CouponInstanceModel struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	CouponID     int64           `gorm:"column:cupom_id;index:idx_cupom_usuario"`
	UserID       int64           `gorm:"column:usuario_id;index:idx_cupom_usuario"`
	StoreID      int64           `gorm:"column:loja_id;index"`
	CampaignID   int64           `gorm:"column:campanha_id"`
	Code         string          `gorm:"column:codigo;uniqueIndex"`
	Type         string          `gorm:"column:tipo"`
	Value        decimal.Decimal `gorm:"column:valor;type:numeric(10,2)"`
	Rules        datatypes.JSON  `gorm:"column:regras"`
	ValidityDays int             `gorm:"column:validade"`
	ClaimedAt    time.Time       `gorm:"column:data_resgate"`
	ExpiresAt    time.Time       `gorm:"column:data_expiracao"`
	Status       int             `gorm:"column:status"`
	UsedAt       *time.Time      `gorm:"column:data_uso"`
	ValidatedBy  *int64          `gorm:"column:validado_por"`
}

func (CouponInstanceModel) TableName() string {
	return "cupons_usuarios"
}
