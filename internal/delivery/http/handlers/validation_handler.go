package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/request"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
)

type ValidationHandler struct {
	uc usecase.ValidationUsecase
}

func NewValidationHandler(uc usecase.ValidationUsecase) *ValidationHandler {
	return &ValidationHandler{uc: uc}
}

// Resolve serves GET /cupons/lojista/verificar/cupom/{codigo}.
func (h *ValidationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	d, err := h.uc.Resolve(r.Context(), chi.URLParam(r, "codigo"), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewValidacao(d))
}

// ConfirmUse serves PATCH /cupons/lojista/{codigo}/status.
func (h *ValidationHandler) ConfirmUse(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmUseRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Status != nil && domain.InstanceStatus(*req.Status) != domain.InstanceUsed {
		badRequest(w, "status can only be set to USADO")
		return
	}
	d, err := h.uc.ConfirmUse(r.Context(), chi.URLParam(r, "codigo"), userID(r), req.UserEmail)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewValidacao(d))
}

func (h *ValidationHandler) LastValidated(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.LastValidated(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewValidacoes(out))
}
