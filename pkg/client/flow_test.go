package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joesantos1/querodesconto-parceiros/pkg/codeinput"
)

type fakeValidator struct {
	mu        sync.Mutex
	resolves  []string
	confirms  []string
	used      map[string]bool
	resolveFn func(code string) (*Validation, error)
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{used: map[string]bool{}}
}

func (f *fakeValidator) Resolve(_ context.Context, code string) (*Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves = append(f.resolves, code)
	if f.resolveFn != nil {
		return f.resolveFn(code)
	}
	if f.used[code] {
		return nil, &APIError{Status: 409, Code: CodeAlreadyUsed}
	}
	v := &Validation{Customer: Customer{Email: "carlos@mail.com"}}
	v.Code = code
	v.Status = StatusActive
	return v, nil
}

func (f *fakeValidator) ConfirmUse(_ context.Context, code, email string) (*Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms = append(f.confirms, code+"|"+email)
	if f.used[code] {
		return nil, &APIError{Status: 409, Code: CodeAlreadyUsed}
	}
	f.used[code] = true
	v := &Validation{}
	v.Code = code
	v.Status = StatusUsed
	return v, nil
}

func (f *fakeValidator) LastValidated(context.Context) ([]Validation, error) {
	return []Validation{{}}, nil
}

func TestFlowScanLocksUntilConfirmed(t *testing.T) {
	api := newFakeValidator()
	flow := NewValidationFlow(api)
	ctx := context.Background()

	v, err := flow.Scan(ctx, " ABCD2345 ")
	if err != nil || v.Code != "ABCD2345" {
		t.Fatalf("scan = %+v, %v", v, err)
	}
	// The QR code is still in front of the camera.
	if _, err := flow.Scan(ctx, "ABCD2345"); !errors.Is(err, ErrScanIgnored) {
		t.Fatalf("second scan err = %v", err)
	}
	if len(api.resolves) != 1 {
		t.Fatalf("resolves = %v", api.resolves)
	}

	used, err := flow.Confirm(ctx)
	if err != nil || used.Status != StatusUsed {
		t.Fatalf("confirm = %+v, %v", used, err)
	}
	if api.confirms[0] != "ABCD2345|carlos@mail.com" {
		t.Fatalf("confirm sent %q", api.confirms[0])
	}
	if flow.Locked() || flow.Current() != nil {
		t.Fatal("flow not reset after confirm")
	}

	// Scanning the same code again reports it as used.
	if _, err := flow.Scan(ctx, "ABCD2345"); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("rescan err = %v", err)
	}
	if flow.Locked() {
		t.Fatal("failed scan must unlock the camera")
	}
}

func TestFlowManualAndScanShareResolve(t *testing.T) {
	api := newFakeValidator()
	flow := NewValidationFlow(api)
	ctx := context.Background()

	if _, err := flow.Manual(ctx, "   "); !errors.Is(err, codeinput.ErrEmptyCode) {
		t.Fatalf("empty manual err = %v", err)
	}
	if len(api.resolves) != 0 {
		t.Fatal("empty input reached the server")
	}
	if _, err := flow.Manual(ctx, "abcd-2345"); err != nil {
		t.Fatalf("manual: %v", err)
	}
	if api.resolves[0] != "abcd-2345" {
		t.Fatalf("resolved %q", api.resolves[0])
	}
}

func TestFlowKeepsFailureKindsApart(t *testing.T) {
	api := newFakeValidator()
	flow := NewValidationFlow(api)
	ctx := context.Background()

	cases := map[string]error{
		"UNKNOWN1": &APIError{Status: 404, Code: CodeNotFound},
		"EXPIRED1": &APIError{Status: 410, Code: CodeExpired},
		"USEDUSED": &APIError{Status: 409, Code: CodeAlreadyUsed},
	}
	api.resolveFn = func(code string) (*Validation, error) { return nil, cases[code] }

	messages := map[string]bool{}
	for code, want := range cases {
		_, err := flow.Manual(ctx, code)
		if !errors.Is(err, want.(*APIError).Unwrap()) {
			t.Fatalf("%s: err = %v", code, err)
		}
		messages[Message(err)] = true
	}
	if len(messages) != len(cases) {
		t.Fatalf("messages collapsed: %v", messages)
	}
}

func TestFlowConfirmWithoutResolve(t *testing.T) {
	flow := NewValidationFlow(newFakeValidator())
	if _, err := flow.Confirm(context.Background()); !errors.Is(err, ErrNothingResolved) {
		t.Fatalf("err = %v", err)
	}
}

type fakeClaimer struct {
	err   error
	calls int
}

func (f *fakeClaimer) Claim(_ context.Context, couponID int64) (*Instance, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Instance{ID: 1, CouponID: couponID, Status: StatusActive}, nil
}

func TestHoldingsOptimisticClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("kept on success", func(t *testing.T) {
		h := NewHoldings(&fakeClaimer{})
		if _, err := h.Claim(ctx, 5); err != nil || !h.Has(5) {
			t.Fatalf("claim err = %v has = %v", err, h.Has(5))
		}
		if _, err := h.Claim(ctx, 5); !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("second claim err = %v", err)
		}
	})

	t.Run("rolled back on failure", func(t *testing.T) {
		for _, err := range []error{
			&APIError{Status: 409, Code: CodeExhausted},
			&APIError{Status: 409, Code: CodeUnavailable},
			ErrNetwork,
		} {
			h := NewHoldings(&fakeClaimer{err: err})
			if _, got := h.Claim(ctx, 5); !errors.Is(got, err) {
				t.Fatalf("err = %v", got)
			}
			if h.Has(5) {
				t.Fatalf("mark kept after %v", err)
			}
		}
	})

	t.Run("kept when already claimed", func(t *testing.T) {
		h := NewHoldings(&fakeClaimer{err: &APIError{Status: 409, Code: CodeAlreadyClaimed}})
		if _, err := h.Claim(ctx, 5); !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("err = %v", err)
		}
		if !h.Has(5) {
			t.Fatal("mark dropped on AlreadyClaimed")
		}
	})

	t.Run("sync", func(t *testing.T) {
		h := NewHoldings(&fakeClaimer{})
		h.Sync([]Instance{{CouponID: 1, Status: StatusActive}, {CouponID: 2, Status: StatusUsed}})
		if !h.Has(1) || h.Has(2) {
			t.Fatal("sync kept the wrong coupons")
		}
		h.Release(1)
		if h.Has(1) {
			t.Fatal("release kept the mark")
		}
	})
}
