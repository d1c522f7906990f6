package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "message": msg})
}

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	session := NewSession("token-1", 7)
	return New(srv.URL, session, srv.Client()), session
}

func TestClientSendsBearerAndDecodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cupons/user", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			CupomID int64 `json:"cupomId"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 99, "cupom_id": body.CupomID, "codigo": "ABCD2345", "codigo_exibicao": "abcd-2345",
			"valor": "10.50", "status": 1, "regras": map[string]string{"1": "Não cumulativo"},
		})
	})
	c, _ := newTestClient(t, mux)

	in, err := c.Claim(context.Background(), 5)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if in.ID != 99 || in.CouponID != 5 || in.Value.String() != "10.5" {
		t.Fatalf("instance = %+v", in)
	}
	if text, ok := in.Rules.Get("1"); !ok || text != "Não cumulativo" {
		t.Fatalf("rules = %+v", in.Rules)
	}
}

func TestRulesKeepServerOrder(t *testing.T) {
	var in Instance
	raw := `{"id":1,"regras":{"2":"Somente no balcão","10":"Não cumulativo","1":"Um por cliente"}}`
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"2", "10", "1"}
	if len(in.Rules) != len(want) {
		t.Fatalf("rules = %+v", in.Rules)
	}
	for i, k := range want {
		if in.Rules[i].Key != k {
			t.Fatalf("rule %d key = %q, want %q", i, in.Rules[i].Key, k)
		}
	}

	var empty Instance
	if err := json.Unmarshal([]byte(`{"id":2,"regras":null}`), &empty); err != nil || empty.Rules != nil {
		t.Fatalf("null rules = %+v, %v", empty.Rules, err)
	}
	if err := json.Unmarshal([]byte(`{"regras":["x"]}`), &empty); err == nil {
		t.Fatal("expected an error for an array of rules")
	}
}

func TestClientMapsErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		code   string
		want   error
	}{
		{http.StatusNotFound, CodeNotFound, ErrNotFound},
		{http.StatusConflict, CodeAlreadyUsed, ErrAlreadyUsed},
		{http.StatusConflict, CodeAlreadyClaimed, ErrAlreadyClaimed},
		{http.StatusConflict, CodeExhausted, ErrExhausted},
		{http.StatusGone, CodeExpired, ErrExpired},
		{http.StatusConflict, CodeCodeMismatch, ErrCodeMismatch},
		{http.StatusBadRequest, CodeInvalidInput, ErrInvalidInput},
		{http.StatusInternalServerError, CodeInternal, ErrServer},
		{http.StatusBadGateway, "", ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /cupons/lojista/verificar/cupom/{code}", func(w http.ResponseWriter, r *http.Request) {
				apiError(w, tt.status, tt.code, "boom")
			})
			c, session := newTestClient(t, mux)

			_, err := c.Resolve(context.Background(), "ABCD2345")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status {
				t.Fatalf("APIError = %+v", apiErr)
			}
			if !session.Active() {
				t.Fatal("business errors must not end the session")
			}
		})
	}
}

func TestClientSignsOutOnSessionRevoked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cupons/user/meuscupons", func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusUnauthorized, CodeSessionRevoked, "session revoked")
	})
	c, session := newTestClient(t, mux)

	var reasons []error
	session.Subscribe(func(reason error) { reasons = append(reasons, reason) })

	_, err := c.MyCoupons(context.Background())
	if !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v", err)
	}
	if session.Active() {
		t.Fatal("session still active")
	}
	if len(reasons) != 1 || !errors.Is(reasons[0], ErrSessionRevoked) {
		t.Fatalf("reasons = %v", reasons)
	}

	// Later calls go out without a token and do not notify again.
	c.MyCoupons(context.Background())
	if len(reasons) != 1 {
		t.Fatalf("subscribers notified %d times", len(reasons))
	}
}

func TestClientSignsOutOnForbidden(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cupons/lojista/ultimos-validados", func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusForbidden, CodeForbidden, "forbidden")
	})
	c, session := newTestClient(t, mux)

	var signedOut atomic.Bool
	session.Subscribe(func(error) { signedOut.Store(true) })

	if _, err := c.LastValidated(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if !signedOut.Load() {
		t.Fatal("subscriber not notified")
	}
}

func TestClientWrapsNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	session := NewSession("token-1", 7)
	c := New(url, session, nil)
	_, err := c.ActiveCampaigns(context.Background(), 0, 0)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v", err)
	}
	if !session.Active() {
		t.Fatal("network errors must not end the session")
	}
}

func TestClientQueryAndRawBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /campanhas/active/all", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cidade_id") != "3" || r.URL.Query().Get("categoria_id") != "" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "titulo": "Semana do pão"}})
	})
	mux.HandleFunc("GET /cupons/user/meuscupons/{id}/qrcode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	})
	c, _ := newTestClient(t, mux)

	campaigns, err := c.ActiveCampaigns(context.Background(), 3, 0)
	if err != nil || len(campaigns) != 1 || campaigns[0].Title != "Semana do pão" {
		t.Fatalf("campaigns = %+v, %v", campaigns, err)
	}
	png, err := c.QRCode(context.Background(), 4)
	if err != nil || string(png) != "\x89PNG" {
		t.Fatalf("qrcode = %q, %v", png, err)
	}
}

func TestSessionUnsubscribe(t *testing.T) {
	s := NewSession("t", 1)
	calls := 0
	unsubscribe := s.Subscribe(func(error) { calls++ })
	unsubscribe()
	s.SignOut(nil)
	if calls != 0 {
		t.Fatalf("calls = %d", calls)
	}
	if s.Active() || s.UserID() != 0 {
		t.Fatal("session not cleared")
	}
}

func TestMessagesAreDistinct(t *testing.T) {
	kinds := []error{
		ErrNotFound, ErrAlreadyUsed, ErrExpired, ErrAlreadyClaimed, ErrExhausted,
		ErrUnavailable, ErrCodeMismatch, ErrSessionRevoked, ErrUnauthorized, ErrNetwork,
	}
	seen := map[string]error{}
	for _, k := range kinds {
		msg := Message(k)
		if prev, ok := seen[msg]; ok {
			t.Fatalf("%v and %v share the message %q", prev, k, msg)
		}
		seen[msg] = k
	}
	if Message(&APIError{Status: 409, Code: CodeAlreadyUsed}) != Message(ErrAlreadyUsed) {
		t.Fatal("API errors must use the message of their kind")
	}
}
