package models

import "time"

type ValidationAttemptModel struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	Code       string    `gorm:"column:codigo;index"`
	MerchantID int64     `gorm:"column:lojista_id"`
	StoreID    int64     `gorm:"column:loja_id"`
	Action     string    `gorm:"column:acao"`
	Result     string    `gorm:"column:resultado"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ValidationAttemptModel) TableName() string {
	return "validacoes"
}
