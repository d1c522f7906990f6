package handlers

import (
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
)

type LedgerHandler struct {
	uc usecase.LedgerUsecase
}

func NewLedgerHandler(uc usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func (h *LedgerHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.ListMine(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewInstanceOutputs(out))
}

func (h *LedgerHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	out, err := h.uc.GetDetail(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewInstanceOutput(out))
}

func (h *LedgerHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	png, err := h.uc.QRCode(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
