package response

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	campaigndto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/campaign"
	"github.com/joesantos1/querodesconto-parceiros/pkg/countdown"
)

type CampanhaResponse struct {
	ID           int64             `json:"id"`
	LojaID       int64             `json:"loja_id"`
	Titulo       string            `json:"titulo"`
	Descricao    string            `json:"descricao"`
	DataInicio   time.Time         `json:"data_inicio"`
	DataFim      time.Time         `json:"data_fim"`
	Status       int               `json:"status"`
	Loja         *LojaResumo       `json:"loja,omitempty"`
	Janela       *countdown.Window `json:"janela,omitempty"`
	CuponsAtivos *int              `json:"cupons_ativos,omitempty"`
}

func NewCampanha(c *domain.Campaign) CampanhaResponse {
	return CampanhaResponse{
		ID:         c.ID,
		LojaID:     c.StoreID,
		Titulo:     c.Title,
		Descricao:  c.Description,
		DataInicio: c.StartsAt,
		DataFim:    c.EndsAt,
		Status:     int(c.Status),
	}
}

func NewCampanhaOutput(o *campaigndto.CampaignOutput) CampanhaResponse {
	resp := NewCampanha(o.Campaign)
	resp.Loja = NewLojaResumo(o.Store)
	window := o.Window
	resp.Janela = &window
	active := o.ActiveCoupons
	resp.CuponsAtivos = &active
	return resp
}

func NewCampanhas(outputs []*campaigndto.CampaignOutput) []CampanhaResponse {
	out := make([]CampanhaResponse, 0, len(outputs))
	for _, o := range outputs {
		out = append(out, NewCampanhaOutput(o))
	}
	return out
}
