package response

import (
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

type LojaResponse struct {
	ID              int64     `json:"id"`
	Nome            string    `json:"nome"`
	Endereco        string    `json:"endereco"`
	CidadeID        int64     `json:"cidade_id"`
	Telefone1       string    `json:"telefone1"`
	Telefone2       string    `json:"telefone2"`
	Email           string    `json:"email"`
	Site            string    `json:"site"`
	Logo            string    `json:"logo"`
	Descricao       string    `json:"descricao"`
	CNPJ            string    `json:"cnpj"`
	LocalizacaoLink string    `json:"localizacao_link"`
	WhatsApp        string    `json:"whatsapp,omitempty"`
	WebhookURL      string    `json:"webhook_url,omitempty"`
	Status          int       `json:"status"`
	CategoriaIDs    []int64   `json:"categoria_ids"`
	CriadoEm        time.Time `json:"criado_em"`
}

// LojaResumo is the store as embedded in campaign and coupon listings.
type LojaResumo struct {
	ID         int64   `json:"id"`
	Nome       string  `json:"nome"`
	Logo       string  `json:"logo"`
	Categorias []int64 `json:"categorias"`
}

type CategoriaResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Icone string `json:"icone,omitempty"`
}

type MembroResponse struct {
	ID        int64     `json:"id"`
	LojaID    int64     `json:"loja_id"`
	LojistaID int64     `json:"lojista_id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	CriadoEm  time.Time `json:"criado_em"`
}

func NewLoja(s *domain.Store) LojaResponse {
	ids := s.CategoryIDs
	if ids == nil {
		ids = []int64{}
	}
	return LojaResponse{
		ID:              s.ID,
		Nome:            s.Name,
		Endereco:        s.Address,
		CidadeID:        s.CityID,
		Telefone1:       s.Phone1,
		Telefone2:       s.Phone2,
		Email:           s.Email,
		Site:            s.Site,
		Logo:            s.Logo,
		Descricao:       s.Description,
		CNPJ:            s.CNPJ,
		LocalizacaoLink: s.LocationLink,
		WhatsApp:        s.WhatsAppLink(),
		WebhookURL:      s.WebhookURL,
		Status:          int(s.Status),
		CategoriaIDs:    ids,
		CriadoEm:        s.CreatedAt,
	}
}

func NewLojas(stores []*domain.Store) []LojaResponse {
	out := make([]LojaResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, NewLoja(s))
	}
	return out
}

func NewLojaResumo(s *domain.Store) *LojaResumo {
	if s == nil {
		return nil
	}
	ids := s.CategoryIDs
	if ids == nil {
		ids = []int64{}
	}
	return &LojaResumo{ID: s.ID, Nome: s.Name, Logo: s.Logo, Categorias: ids}
}

func NewCategorias(categories []*domain.Category) []CategoriaResponse {
	out := make([]CategoriaResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoriaResponse{ID: c.ID, Nome: c.Name, Cor: c.Color, Icone: c.Icon})
	}
	return out
}

func NewMembros(members []*domain.StoreMember) []MembroResponse {
	out := make([]MembroResponse, 0, len(members))
	for _, m := range members {
		out = append(out, NewMembro(m))
	}
	return out
}

func NewMembro(m *domain.StoreMember) MembroResponse {
	return MembroResponse{
		ID:        m.ID,
		LojaID:    m.StoreID,
		LojistaID: m.LojistaID,
		Nome:      m.Name,
		Email:     m.Email,
		CriadoEm:  m.CreatedAt,
	}
}
