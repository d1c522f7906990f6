package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
)

func setup(t *testing.T, handler http.HandlerFunc) (*Dispatcher, *domain.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo := memory.NewRepository()
	store := &domain.Store{Name: "Padaria Central", Status: domain.StoreActive, WebhookURL: srv.URL}
	if err := repo.CreateStore(context.Background(), store, 1); err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(repo, "s3cret", time.Second, nil)
	d.backoff = time.Millisecond
	return d, store
}

func usedEvent(storeID int64) domain.CouponEvent {
	return domain.CouponEvent{
		EventID:    "evt-1",
		Kind:       domain.EventCouponUsed,
		InstanceID: 9,
		Code:       "AB12CD34",
		StoreID:    storeID,
		Value:      "10",
		OccurredAt: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleSignsPayload(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
	)
	d, store := setup(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Signature")
		w.WriteHeader(http.StatusNoContent)
	})

	d.Handle(context.Background(), usedEvent(store.ID))

	if gotSig == "" || gotSig != d.Sign(gotBody) {
		t.Fatalf("signature %q does not match body", gotSig)
	}
	var p CallbackPayload
	if err := json.Unmarshal(gotBody, &p); err != nil {
		t.Fatal(err)
	}
	if p.Code != "AB12CD34" || p.StoreID != store.ID || p.Event != "coupon.used" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestHandleRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	d, store := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	d.Handle(context.Background(), usedEvent(store.ID))
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestHandleDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	d, store := setup(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	d.Handle(context.Background(), usedEvent(store.ID))
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestRunSkipsClaimEvents(t *testing.T) {
	var calls atomic.Int32
	d, store := setup(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	claimed := usedEvent(store.ID)
	claimed.Kind = domain.EventCouponClaimed
	msgs := make(chan domain.Message, 3)
	for _, e := range []domain.CouponEvent{claimed, usedEvent(store.ID)} {
		v, _ := json.Marshal(e)
		msgs <- domain.Message{Value: v}
	}
	msgs <- domain.Message{Value: []byte("not json")}
	close(msgs)

	if err := d.Run(context.Background(), msgs); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("Run on a closed stream err = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestRunStopsQuietlyOnCancel(t *testing.T) {
	d, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msgs := make(chan domain.Message)
	close(msgs)
	if err := d.Run(ctx, msgs); err != nil {
		t.Fatalf("Run after cancel err = %v", err)
	}
}
