package client

import (
	"context"
	"errors"
	"sync"

	"github.com/joesantos1/querodesconto-parceiros/pkg/codeinput"
)

// ErrScanIgnored is returned for scans that arrive while a previous scan is
// still being handled.
var ErrScanIgnored = errors.New("scan ignored while a code is being validated")

// ErrNothingResolved is returned by Confirm before any code was resolved.
var ErrNothingResolved = errors.New("no resolved code to confirm")

// Validator is the part of Client the merchant validation flow uses.
type Validator interface {
	Resolve(ctx context.Context, code string) (*Validation, error)
	ConfirmUse(ctx context.Context, code, userEmail string) (*Validation, error)
	LastValidated(ctx context.Context) ([]Validation, error)
}

// ValidationFlow funnels the camera and the keyboard into one resolve step
// and then confirms the resolved code. The camera stays locked from the first
// accepted scan until the flow is confirmed, cancelled or fails.
type ValidationFlow struct {
	api  Validator
	scan codeinput.ScanLock

	mu      sync.Mutex
	current *Validation
}

func NewValidationFlow(api Validator) *ValidationFlow {
	return &ValidationFlow{api: api}
}

// Scan handles a payload read by the camera.
func (f *ValidationFlow) Scan(ctx context.Context, payload string) (*Validation, error) {
	code, ok := f.scan.Accept(payload)
	if !ok {
		return nil, ErrScanIgnored
	}
	v, err := f.resolve(ctx, code)
	if err != nil {
		f.scan.Reset()
	}
	return v, err
}

// Manual handles a code typed by the merchant.
func (f *ValidationFlow) Manual(ctx context.Context, text string) (*Validation, error) {
	code, err := codeinput.Manual(text)
	if err != nil {
		return nil, err
	}
	return f.resolve(ctx, code)
}

func (f *ValidationFlow) resolve(ctx context.Context, code string) (*Validation, error) {
	v, err := f.api.Resolve(ctx, code)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.current = nil
		return nil, err
	}
	f.current = v
	return v, nil
}

// Current is the last successfully resolved redemption, if any.
func (f *ValidationFlow) Current() *Validation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Confirm marks the resolved coupon as used, bound to the customer it was
// resolved to. The flow is reset whatever the outcome; a second confirm of the
// same code reports ErrAlreadyUsed from the server.
func (f *ValidationFlow) Confirm(ctx context.Context) (*Validation, error) {
	f.mu.Lock()
	current := f.current
	f.mu.Unlock()
	if current == nil {
		return nil, ErrNothingResolved
	}
	defer f.Cancel()
	return f.api.ConfirmUse(ctx, current.Code, current.Customer.Email)
}

// Cancel drops the resolved code and unlocks the camera.
func (f *ValidationFlow) Cancel() {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
	f.scan.Reset()
}

func (f *ValidationFlow) Recent(ctx context.Context) ([]Validation, error) {
	return f.api.LastValidated(ctx)
}

// Locked reports whether the camera is ignoring scans.
func (f *ValidationFlow) Locked() bool {
	return f.scan.Locked()
}
