package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyClaimed = "ALREADY_CLAIMED"
	CodeExhausted      = "EXHAUSTED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeAlreadyUsed    = "ALREADY_USED"
	CodeExpired        = "EXPIRED"
	CodeCodeMismatch   = "CODE_MISMATCH"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeAlreadyMember  = "ALREADY_MEMBER"
	CodeInternal       = "INTERNAL"
)

// writeError maps domain errors onto the REST error contract. Team
// membership failures surface as 404 so a client only sees 401/403 for a
// bad session.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.JSON(w, http.StatusBadRequest, response.ErrorResponse{
			Code:    CodeInvalidInput,
			Message: verr.Error(),
			Field:   verr.Field,
		})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotLojista),
		errors.Is(err, domain.ErrLastMember):
		response.Error(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case domain.IsNotFound(err), errors.Is(err, domain.ErrNotStoreMember):
		response.Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyClaimed):
		response.Error(w, http.StatusConflict, CodeAlreadyClaimed, err.Error())
	case errors.Is(err, domain.ErrExhausted):
		response.Error(w, http.StatusConflict, CodeExhausted, err.Error())
	case errors.Is(err, domain.ErrCouponUnavailable),
		errors.Is(err, domain.ErrInstanceCancelled),
		errors.Is(err, domain.ErrInstanceBlocked):
		response.Error(w, http.StatusConflict, CodeUnavailable, err.Error())
	case errors.Is(err, domain.ErrAlreadyUsed):
		response.Error(w, http.StatusConflict, CodeAlreadyUsed, err.Error())
	case errors.Is(err, domain.ErrAlreadyMember):
		response.Error(w, http.StatusConflict, CodeAlreadyMember, err.Error())
	case errors.Is(err, domain.ErrExpired):
		response.Error(w, http.StatusGone, CodeExpired, err.Error())
	case errors.Is(err, domain.ErrCodeMismatch):
		response.Error(w, http.StatusConflict, CodeCodeMismatch, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func badRequest(w http.ResponseWriter, message string) {
	response.Error(w, http.StatusBadRequest, CodeInvalidInput, message)
}
