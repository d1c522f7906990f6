package request

import (
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/shopspring/decimal"
)

type CupomRequest struct {
	CampanhaID int64           `json:"campanha_id"`
	Codigo     string          `json:"codigo"`
	Tipo       string          `json:"tipo"`
	Valor      decimal.Decimal `json:"valor"`
	Qtd        int             `json:"qtd"`
	Validade   int             `json:"validade"`
	Regras     domain.Rules    `json:"regras"`
	Status     *int            `json:"status"`
}

type ClaimRequest struct {
	CupomID int64 `json:"cupomId"`
}

// ConfirmUseRequest is the body of the merchant status change. Only the move
// to USADO exists, so status may be omitted.
type ConfirmUseRequest struct {
	Status    *int   `json:"status"`
	UserEmail string `json:"userEmail"`
}
