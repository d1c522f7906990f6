package domain

import (
	"context"
	"errors"
	"time"
)

type ValidationAction string

const (
	ActionResolve ValidationAction = "resolve"
	ActionConfirm ValidationAction = "confirm"
)

// ValidationAttempt is one audited resolve or confirm call by a merchant.
type ValidationAttempt struct {
	ID         int64
	Code       string
	MerchantID int64
	StoreID    int64
	Action     ValidationAction
	Result     string
	CreatedAt  time.Time
}

type ValidationAttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *ValidationAttempt) error
}

// ResultOf names the outcome of a validation call for audit and metrics.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInstanceCancelled), errors.Is(err, ErrInstanceBlocked):
		return "unavailable"
	case errors.Is(err, ErrCodeMismatch):
		return "code_mismatch"
	case IsNotFound(err):
		return "not_found"
	}
	return "error"
}
