package response

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	coupondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/coupon"
	"github.com/shopspring/decimal"
)

type CupomResponse struct {
	ID         int64           `json:"id"`
	CampanhaID int64           `json:"campanha_id"`
	LojaID     int64           `json:"loja_id"`
	Codigo     string          `json:"codigo"`
	Tipo       string          `json:"tipo"`
	Valor      decimal.Decimal `json:"valor"`
	Qtd        int             `json:"qtd"`
	Usados     int             `json:"usados"`
	Restantes  int             `json:"restantes"`
	Validade   int             `json:"validade"`
	Regras     domain.Rules    `json:"regras"`
	Status     int             `json:"status"`
	StatusNome string          `json:"status_nome"`
}

type UltimoUsuario struct {
	Nome   string    `json:"nome"`
	PegoEm time.Time `json:"pegoEm"`
}

type CupomDetalhesResponse struct {
	CupomResponse
	Campanha        CampanhaResponse `json:"campanha"`
	Loja            LojaResponse     `json:"loja"`
	JaTenho         bool             `json:"jaTenho"`
	OutrosCupons    []CupomResponse  `json:"outrosCupons"`
	UltimosUsuarios []UltimoUsuario  `json:"ultimosUsuarios"`
}

func rulesOrEmpty(r domain.Rules) domain.Rules {
	if r == nil {
		return domain.Rules{}
	}
	return r
}

func NewCupom(v coupondto.CouponView) CupomResponse {
	c := v.Coupon
	return CupomResponse{
		ID:         c.ID,
		CampanhaID: c.CampaignID,
		LojaID:     c.StoreID,
		Codigo:     c.Code,
		Tipo:       string(c.Type),
		Valor:      c.Value,
		Qtd:        c.Quantity,
		Usados:     c.Used,
		Restantes:  c.Remaining(),
		Validade:   c.ValidityDays,
		Regras:     rulesOrEmpty(c.Rules),
		Status:     int(v.Status),
		StatusNome: v.Status.String(),
	}
}

func NewCupons(views []coupondto.CouponView) []CupomResponse {
	out := make([]CupomResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewCupom(v))
	}
	return out
}

func NewCupomDetalhes(d *coupondto.CouponDetailOutput) CupomDetalhesResponse {
	users := make([]UltimoUsuario, 0, len(d.LastClaimers))
	for _, c := range d.LastClaimers {
		users = append(users, UltimoUsuario{Nome: c.Name, PegoEm: c.ClaimedAt})
	}
	return CupomDetalhesResponse{
		CupomResponse:   NewCupom(d.CouponView),
		Campanha:        NewCampanha(d.Campaign),
		Loja:            NewLoja(d.Store),
		JaTenho:         d.AlreadyHave,
		OutrosCupons:    NewCupons(d.OtherCoupons),
		UltimosUsuarios: users,
	}
}
