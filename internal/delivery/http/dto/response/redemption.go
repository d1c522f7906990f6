package response

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	redemptiondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/redemption"
	"github.com/shopspring/decimal"
)

type CampanhaResumo struct {
	ID     int64  `json:"id"`
	Titulo string `json:"titulo"`
}

// CupomUsuarioResponse is a claimed coupon. Terms come from the snapshot
// taken at claim time, never from the current template.
type CupomUsuarioResponse struct {
	ID             int64           `json:"id"`
	CupomID        int64           `json:"cupom_id"`
	CampanhaID     int64           `json:"campanha_id"`
	LojaID         int64           `json:"loja_id"`
	Codigo         string          `json:"codigo"`
	CodigoExibicao string          `json:"codigo_exibicao"`
	Tipo           string          `json:"tipo"`
	Valor          decimal.Decimal `json:"valor"`
	Regras         domain.Rules    `json:"regras"`
	Validade       int             `json:"validade"`
	CriadoEm       time.Time       `json:"criado_em"`
	ExpiraEm       time.Time       `json:"expira_em"`
	Status         int             `json:"status"`
	StatusNome     string          `json:"status_nome"`
	UsadoEm        *time.Time      `json:"usado_em,omitempty"`
	ValidadoPor    *int64          `json:"validado_por,omitempty"`
	Loja           *LojaResponse   `json:"loja,omitempty"`
	Campanha       *CampanhaResumo `json:"campanha,omitempty"`
}

type UsuarioResumo struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
}

// ValidacaoResponse is what the merchant sees after resolving a code.
type ValidacaoResponse struct {
	CupomUsuarioResponse
	Usuario UsuarioResumo `json:"usuario"`
}

func NewCupomUsuario(ci *domain.CouponInstance, status domain.InstanceStatus) CupomUsuarioResponse {
	return CupomUsuarioResponse{
		ID:             ci.ID,
		CupomID:        ci.CouponID,
		CampanhaID:     ci.CampaignID,
		LojaID:         ci.StoreID,
		Codigo:         ci.Code,
		CodigoExibicao: ci.DisplayCode(),
		Tipo:           string(ci.Type),
		Valor:          ci.Value,
		Regras:         rulesOrEmpty(ci.Rules),
		Validade:       ci.ValidityDays,
		CriadoEm:       ci.ClaimedAt,
		ExpiraEm:       ci.ExpiresAt,
		Status:         int(status),
		StatusNome:     status.String(),
		UsadoEm:        ci.UsedAt,
		ValidadoPor:    ci.ValidatedBy,
	}
}

func NewInstanceOutput(o *redemptiondto.InstanceOutput) CupomUsuarioResponse {
	resp := NewCupomUsuario(o.Instance, o.Status)
	if o.Store != nil {
		loja := NewLoja(o.Store)
		loja.WebhookURL = ""
		resp.Loja = &loja
	}
	if o.Campaign != nil {
		resp.Campanha = &CampanhaResumo{ID: o.Campaign.ID, Titulo: o.Campaign.Title}
	}
	return resp
}

func NewInstanceOutputs(outputs []*redemptiondto.InstanceOutput) []CupomUsuarioResponse {
	out := make([]CupomUsuarioResponse, 0, len(outputs))
	for _, o := range outputs {
		out = append(out, NewInstanceOutput(o))
	}
	return out
}

func NewValidacao(d *redemptiondto.RedemptionDetail) ValidacaoResponse {
	resp := ValidacaoResponse{CupomUsuarioResponse: NewInstanceOutput(&d.InstanceOutput)}
	if d.User != nil {
		resp.Usuario = UsuarioResumo{Nome: d.User.Name, Email: d.User.Email, Telefone: d.User.Phone}
	}
	return resp
}

func NewValidacoes(details []*redemptiondto.RedemptionDetail) []ValidacaoResponse {
	out := make([]ValidacaoResponse, 0, len(details))
	for _, d := range details {
		out = append(out, NewValidacao(d))
	}
	return out
}
