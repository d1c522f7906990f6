package models

import "time"

type UserModel struct {
	ID    int64  `gorm:"primaryKey;column:id"`
	Name  string `gorm:"column:nome"`
	Email string `gorm:"column:email;uniqueIndex"`
	Phone string `gorm:"column:telefone"`
	Role  string `gorm:"column:tipo"`
}

func (UserModel) TableName() string {
	return "usuarios"
}

type CategoryModel struct {
	ID    int64  `gorm:"primaryKey;column:id"`
	Name  string `gorm:"column:nome"`
	Color string `gorm:"column:cor"`
	Icon  string `gorm:"column:icone"`
}

func (CategoryModel) TableName() string {
	return "categorias"
}

type StoreModel struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:nome;not null"`
	Address      string    `gorm:"column:endereco"`
	CityID       int64     `gorm:"column:cidade_id;index"`
	Phone1       string    `gorm:"column:telefone1"`
	Phone2       string    `gorm:"column:telefone2"`
	Email        string    `gorm:"column:email"`
	Site         string    `gorm:"column:site"`
	Logo         string    `gorm:"column:logo"`
	Description  string    `gorm:"column:descricao"`
	LocationLink string    `gorm:"column:link_localizacao"`
	CNPJ         string    `gorm:"column:cnpj"`
	WebhookURL   string    `gorm:"column:webhook_url"`
	Status       int       `gorm:"column:status;default:1"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (StoreModel) TableName() string {
	return "lojas"
}

type StoreCategoryModel struct {
	StoreID    int64 `gorm:"primaryKey;column:loja_id"`
	CategoryID int64 `gorm:"primaryKey;column:categoria_id"`
}

func (StoreCategoryModel) TableName() string {
	return "loja_categorias"
}

type StoreMemberModel struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	StoreID   int64     `gorm:"column:loja_id;uniqueIndex:idx_loja_membro"`
	LojistaID int64     `gorm:"column:lojista_id;uniqueIndex:idx_loja_membro"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (StoreMemberModel) TableName() string {
	return "loja_membros"
}
