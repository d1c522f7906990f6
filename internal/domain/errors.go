package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrStoreNotFound     = errors.New("store not found")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrInstanceNotFound  = errors.New("redemption code not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyClaimed    = errors.New("coupon already claimed by this user")
	ErrExhausted         = errors.New("coupon exhausted")
	ErrCouponUnavailable = errors.New("coupon is not available for claim")
	ErrAlreadyUsed       = errors.New("coupon already used")
	ErrExpired           = errors.New("coupon expired")
	ErrInstanceCancelled = errors.New("coupon cancelled")
	ErrInstanceBlocked   = errors.New("coupon blocked")
	ErrCodeMismatch      = errors.New("redemption code does not belong to this user")
	ErrNotStoreMember    = errors.New("user is not a member of this store")
	ErrAlreadyMember     = errors.New("user is already a member of this store")
	ErrLastMember        = errors.New("store must keep at least one member")
	ErrNotLojista        = errors.New("user is not a lojista")
	ErrInvalidInput      = errors.New("invalid input")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStoreNotFound) ||
		errors.Is(err, ErrCampaignNotFound) ||
		errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrInstanceNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// ValidationError carries the offending field so handlers can report it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
