package client

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/pkg/countdown"
	"github.com/shopspring/decimal"
)

// Instance statuses as returned in "status".
const (
	StatusActive    = 1
	StatusUsed      = 2
	StatusExpired   = 3
	StatusCancelled = 4
	StatusBlocked   = 5
)

type StoreSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"nome"`
	Logo       string  `json:"logo"`
	Categories []int64 `json:"categorias"`
}

type Store struct {
	ID           int64  `json:"id"`
	Name         string `json:"nome"`
	Address      string `json:"endereco"`
	Phone1       string `json:"telefone1"`
	Phone2       string `json:"telefone2"`
	Email        string `json:"email"`
	Site         string `json:"site"`
	Logo         string `json:"logo"`
	LocationLink string `json:"localizacao_link"`
	WhatsApp     string `json:"whatsapp,omitempty"`
}

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Color string `json:"cor"`
	Icon  string `json:"icone,omitempty"`
}

type Campaign struct {
	ID            int64             `json:"id"`
	StoreID       int64             `json:"loja_id"`
	Title         string            `json:"titulo"`
	Description   string            `json:"descricao"`
	StartsAt      time.Time         `json:"data_inicio"`
	EndsAt        time.Time         `json:"data_fim"`
	Status        int               `json:"status"`
	Store         *StoreSummary     `json:"loja,omitempty"`
	Window        *countdown.Window `json:"janela,omitempty"`
	ActiveCoupons *int              `json:"cupons_ativos,omitempty"`
}

type Coupon struct {
	ID           int64           `json:"id"`
	CampaignID   int64           `json:"campanha_id"`
	StoreID      int64           `json:"loja_id"`
	Code         string          `json:"codigo"`
	Type         string          `json:"tipo"`
	Value        decimal.Decimal `json:"valor"`
	Quantity     int             `json:"qtd"`
	Used         int             `json:"usados"`
	Remaining    int             `json:"restantes"`
	ValidityDays int             `json:"validade"`
	Rules        Rules           `json:"regras"`
	Status       int             `json:"status"`
	StatusName   string          `json:"status_nome"`
}

// RecentClaimer is one entry of the "last users who took it" list.
type RecentClaimer struct {
	Name      string    `json:"nome"`
	ClaimedAt time.Time `json:"pegoEm"`
}

type CouponDetail struct {
	Coupon
	Campaign     Campaign        `json:"campanha"`
	Store        Store           `json:"loja"`
	AlreadyHave  bool            `json:"jaTenho"`
	OtherCoupons []Coupon        `json:"outrosCupons"`
	LastClaimers []RecentClaimer `json:"ultimosUsuarios"`
}

// Instance is one claimed coupon.
type Instance struct {
	ID           int64           `json:"id"`
	CouponID     int64           `json:"cupom_id"`
	CampaignID   int64           `json:"campanha_id"`
	StoreID      int64           `json:"loja_id"`
	Code         string          `json:"codigo"`
	DisplayCode  string          `json:"codigo_exibicao"`
	Type         string          `json:"tipo"`
	Value        decimal.Decimal `json:"valor"`
	Rules        Rules           `json:"regras"`
	ValidityDays int             `json:"validade"`
	ClaimedAt    time.Time       `json:"criado_em"`
	ExpiresAt    time.Time       `json:"expira_em"`
	Status       int             `json:"status"`
	StatusName   string          `json:"status_nome"`
	UsedAt       *time.Time      `json:"usado_em,omitempty"`
	ValidatedBy  *int64          `json:"validado_por,omitempty"`
	Store        *Store          `json:"loja,omitempty"`
	Campaign     *struct {
		ID    int64  `json:"id"`
		Title string `json:"titulo"`
	} `json:"campanha,omitempty"`
}

// Window is the validity countdown of the instance.
func (i *Instance) Window(now time.Time) countdown.Window {
	return countdown.Evaluate(now, i.ClaimedAt, i.ExpiresAt)
}

type Customer struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	Phone string `json:"telefone"`
}

// Validation is a resolved or confirmed redemption as the merchant sees it.
type Validation struct {
	Instance
	Customer Customer `json:"usuario"`
}
