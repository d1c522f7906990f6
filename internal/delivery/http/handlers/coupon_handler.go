package handlers

import (
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/request"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	coupondto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/coupon"
)

type CouponHandler struct {
	uc usecase.CouponUsecase
}

func NewCouponHandler(uc usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

func couponStatus(s *int) *domain.CouponStatus {
	if s == nil {
		return nil
	}
	status := domain.CouponStatus(*s)
	return &status
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CupomRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.uc.CreateCoupon(r.Context(), &coupondto.CreateCouponInput{
		LojistaID:    userID(r),
		CampaignID:   req.CampanhaID,
		Code:         req.Codigo,
		Type:         domain.DiscountType(req.Tipo),
		Value:        req.Valor,
		Quantity:     req.Qtd,
		ValidityDays: req.Validade,
		Rules:        req.Regras,
		Status:       couponStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewCupom(coupondto.CouponView{Coupon: c, Status: c.Status}))
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req request.CupomRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.uc.UpdateCoupon(r.Context(), &coupondto.UpdateCouponInput{
		LojistaID:    userID(r),
		ID:           id,
		Type:         domain.DiscountType(req.Tipo),
		Value:        req.Valor,
		Quantity:     req.Qtd,
		ValidityDays: req.Validade,
		Rules:        req.Regras,
		Status:       couponStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupom(coupondto.CouponView{Coupon: c, Status: c.Status}))
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.uc.DeleteCoupon(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get serves GET /cupons/lojista/edit/{id}, the template as the edit form
// loads it.
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	v, err := h.uc.GetCoupon(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupom(*v))
}

func (h *CouponHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	views, err := h.uc.ListByCampaign(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupons(views))
}

func (h *CouponHandler) ListByStore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "storeId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	views, err := h.uc.ListByStore(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewCupons(views))
}
