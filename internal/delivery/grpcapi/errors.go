package grpcapi

import (
	"errors"
	"log/slog"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatus(method string, err error) error {
	switch {
	case errors.Is(err, middleware.ErrSessionRevoked),
		errors.Is(err, middleware.ErrInvalidToken),
		errors.Is(err, middleware.ErrNoToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsNotFound(err), errors.Is(err, domain.ErrNotStoreMember):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyUsed), errors.Is(err, domain.ErrAlreadyClaimed):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrExhausted),
		errors.Is(err, domain.ErrCouponUnavailable),
		errors.Is(err, domain.ErrInstanceCancelled),
		errors.Is(err, domain.ErrInstanceBlocked),
		errors.Is(err, domain.ErrCodeMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	slog.Error("grpc call failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
