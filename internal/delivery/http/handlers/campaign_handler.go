package handlers

import (
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/request"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	campaigndto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/campaign"
)

type CampaignHandler struct {
	uc usecase.CampaignUsecase
}

func NewCampaignHandler(uc usecase.CampaignUsecase) *CampaignHandler {
	return &CampaignHandler{uc: uc}
}

func campaignStatus(s *int) *domain.CampaignStatus {
	if s == nil {
		return nil
	}
	status := domain.CampaignStatus(*s)
	return &status
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CampanhaRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.uc.CreateCampaign(r.Context(), &campaigndto.CreateCampaignInput{
		LojistaID:   userID(r),
		StoreID:     req.LojaID,
		Title:       req.Titulo,
		Description: req.Descricao,
		StartsAt:    req.DataInicio,
		EndsAt:      req.DataFim,
		Status:      campaignStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewCampanha(c))
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req request.CampanhaRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.uc.UpdateCampaign(r.Context(), &campaigndto.UpdateCampaignInput{
		LojistaID:   userID(r),
		ID:          id,
		Title:       req.Titulo,
		Description: req.Descricao,
		StartsAt:    req.DataInicio,
		EndsAt:      req.DataFim,
		Status:      campaignStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCampanha(c))
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.uc.DeleteCampaign(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	out, err := h.uc.GetCampaign(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCampanhaOutput(out))
}

func (h *CampaignHandler) ListByStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathID(r, "lojaId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	out, err := h.uc.ListByStore(r.Context(), userID(r), storeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCampanhas(out))
}

func (h *CampaignHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.ListForLojista(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCampanhas(out))
}
