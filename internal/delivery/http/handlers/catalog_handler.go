package handlers

import (
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/request"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
)

type CatalogHandler struct {
	uc usecase.CatalogUsecase
}

func NewCatalogHandler(uc usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListActiveCampaigns serves GET /campanhas/active/all?cidade_id=&categoria_id=
func (h *CatalogHandler) ListActiveCampaigns(w http.ResponseWriter, r *http.Request) {
	cityID, err := queryID(r, "cidade_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	categoryID, err := queryID(r, "categoria_id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	out, err := h.uc.ListActiveCampaigns(r.Context(), domain.CampaignFilter{CityID: cityID, CategoryID: categoryID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCampanhas(out))
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCategorias(categories))
}

func (h *CatalogHandler) ListActiveCoupons(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	views, err := h.uc.ListActiveCoupons(r.Context(), campaignID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupons(views))
}

func (h *CatalogHandler) GetCouponDetail(w http.ResponseWriter, r *http.Request) {
	couponID, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	d, err := h.uc.GetCouponDetail(r.Context(), couponID, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupomDetalhes(d))
}

// Claim serves POST /cupons/user. 409 is the normal outcome of losing the
// race for the last unit.
func (h *CatalogHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req request.ClaimRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.CupomID <= 0 {
		badRequest(w, "cupomId is required")
		return
	}
	ci, err := h.uc.Claim(r.Context(), req.CupomID, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewCupomUsuario(ci, ci.Status))
}
