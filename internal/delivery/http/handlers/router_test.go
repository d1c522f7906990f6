package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const testSecret = "test-secret"

var t0 = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type testServer struct {
	t        *testing.T
	srv      *httptest.Server
	repo     *memory.Repository
	sessions *memory.SessionStore
	now      time.Time

	owner    *domain.User
	customer *domain.User
	store    *domain.Store
	campaign *domain.Campaign
	coupon   *domain.Coupon
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	ts := &testServer{t: t, repo: memory.NewRepository(), sessions: memory.NewSessionStore(), now: t0}
	clock := func() time.Time { return ts.now }
	repo := ts.repo

	catalog, err := usecase.NewDefaultCatalogUsecase(repo, repo, repo, repo, repo, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog.Now = clock
	ledger := usecase.NewDefaultLedgerUsecase(repo, repo, repo)
	ledger.Now = clock
	validation := usecase.NewDefaultValidationUsecase(repo, repo, repo, repo, repo, repo, nil, nil, nil)
	validation.Now = clock
	campaigns := usecase.NewDefaultCampaignUsecase(repo, repo, repo, repo)
	campaigns.Now = clock
	coupons, err := usecase.NewDefaultCouponUsecase(repo, repo, repo, nil)
	if err != nil {
		t.Fatal(err)
	}
	coupons.Now = clock

	router := NewRouter(RouterDeps{
		Auth:       middleware.NewAuthenticator(testSecret, "", ts.sessions),
		Catalog:    NewCatalogHandler(catalog),
		Ledger:     NewLedgerHandler(ledger),
		Validation: NewValidationHandler(validation),
		Stores:     NewStoreHandler(usecase.NewDefaultStoreUsecase(repo, repo, repo)),
		Campaigns:  NewCampaignHandler(campaigns),
		Coupons:    NewCouponHandler(coupons),
		Gatherer:   prometheus.NewRegistry(),
	})
	ts.srv = httptest.NewServer(router)
	t.Cleanup(ts.srv.Close)

	ts.owner = repo.PutUser(&domain.User{Name: "Ana Souza", Email: "ana@padaria.com", Role: domain.RoleLojista})
	ts.customer = repo.PutUser(&domain.User{Name: "Carlos Lima", Email: "carlos@mail.com", Phone: "11999990000", Role: domain.RoleUser})
	ts.store = &domain.Store{Name: "Padaria Central", CityID: 1, Phone1: "(11) 3333-4444", Status: domain.StoreActive}
	if err := repo.CreateStore(ctx, ts.store, ts.owner.ID); err != nil {
		t.Fatal(err)
	}
	ts.campaign = &domain.Campaign{
		StoreID:  ts.store.ID,
		Title:    "Semana do pão",
		StartsAt: t0.Add(-time.Hour),
		EndsAt:   t0.Add(7 * 24 * time.Hour),
		Status:   domain.CampaignActive,
	}
	if err := repo.CreateCampaign(ctx, ts.campaign); err != nil {
		t.Fatal(err)
	}
	ts.coupon = &domain.Coupon{
		CampaignID:   ts.campaign.ID,
		StoreID:      ts.store.ID,
		Code:         "PAO10OFF",
		Type:         domain.DiscountFixed,
		Value:        decimal.NewFromInt(10),
		Quantity:     5,
		ValidityDays: 1,
		Rules:        domain.Rules{{Key: "1", Text: "Não cumulativo"}},
		Status:       domain.CouponActive,
	}
	if err := repo.CreateCoupon(ctx, ts.coupon); err != nil {
		t.Fatal(err)
	}
	return ts
}

func (ts *testServer) token(u *domain.User, jti string) string {
	ts.t.Helper()
	claims := middleware.Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		ts.t.Fatal(err)
	}
	return signed
}

func (ts *testServer) do(method, path, token string, body any) *http.Response {
	ts.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		ts.t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatal(err)
	}
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	e := decodeBody[response.ErrorResponse](t, resp)
	if e.Code != code {
		t.Fatalf("code = %q, want %q (%s)", e.Code, code, e.Message)
	}
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(t)

	if resp := ts.do(http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}
	if resp := ts.do(http.MethodGet, "/metrics", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics = %d", resp.StatusCode)
	}

	resp := ts.do(http.MethodGet, "/campanhas/active/all", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("active campaigns = %d", resp.StatusCode)
	}
	list := decodeBody[[]response.CampanhaResponse](t, resp)
	if len(list) != 1 || list[0].Janela == nil || list[0].Janela.Phase != "active" {
		t.Fatalf("campaigns = %+v", list)
	}
	if list[0].CuponsAtivos == nil || *list[0].CuponsAtivos != 1 {
		t.Fatalf("cupons_ativos = %v", list[0].CuponsAtivos)
	}

	resp = ts.do(http.MethodGet, "/campanhas/active/all?cidade_id=abc", "", nil)
	expectError(t, resp, http.StatusBadRequest, CodeInvalidInput)
}

func TestAuthBoundary(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/cupons/user/meuscupons", "", nil)
	expectError(t, resp, http.StatusUnauthorized, middleware.CodeUnauthorized)

	resp = ts.do(http.MethodGet, "/cupons/user/meuscupons", "not-a-jwt", nil)
	expectError(t, resp, http.StatusUnauthorized, middleware.CodeUnauthorized)

	tok := ts.token(ts.customer, "jti-1")
	resp = ts.do(http.MethodGet, "/cupons/lojista/ultimos-validados", tok, nil)
	expectError(t, resp, http.StatusForbidden, middleware.CodeForbidden)

	ts.sessions.Revoke(context.Background(), "jti-1", time.Now().Add(time.Hour))
	resp = ts.do(http.MethodGet, "/cupons/user/meuscupons", tok, nil)
	expectError(t, resp, http.StatusUnauthorized, middleware.CodeSessionRevoked)
}

func TestClaimAndValidateOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	user := ts.token(ts.customer, "u-1")
	merchant := ts.token(ts.owner, "m-1")

	resp := ts.do(http.MethodPost, "/cupons/user", user, map[string]int64{"cupomId": ts.coupon.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("claim = %d", resp.StatusCode)
	}
	claimed := decodeBody[response.CupomUsuarioResponse](t, resp)
	if claimed.Status != int(domain.InstanceActive) || len(claimed.Codigo) != domain.CodeLength {
		t.Fatalf("claimed = %+v", claimed)
	}
	if claimed.CodigoExibicao != claimed.Codigo[:4]+"-"+claimed.Codigo[4:] {
		t.Fatalf("display code = %q", claimed.CodigoExibicao)
	}

	resp = ts.do(http.MethodPost, "/cupons/user", user, map[string]int64{"cupomId": ts.coupon.ID})
	expectError(t, resp, http.StatusConflict, CodeAlreadyClaimed)

	resp = ts.do(http.MethodGet, "/cupons/user/meuscupons", user, nil)
	mine := decodeBody[[]response.CupomUsuarioResponse](t, resp)
	if len(mine) != 1 || mine[0].Loja == nil || !strings.HasPrefix(mine[0].Loja.WhatsApp, "https://wa.me/551133334444") {
		t.Fatalf("meuscupons = %+v", mine)
	}

	resp = ts.do(http.MethodGet, fmt.Sprintf("/cupons/user/meuscupons/%d/qrcode", claimed.ID), user, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qrcode = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	// The merchant types the display form in lower case.
	typed := strings.ToLower(claimed.CodigoExibicao)
	resp = ts.do(http.MethodGet, "/cupons/lojista/verificar/cupom/"+typed, merchant, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve = %d", resp.StatusCode)
	}
	resolved := decodeBody[response.ValidacaoResponse](t, resp)
	if resolved.Usuario.Email != "carlos@mail.com" || resolved.Regras[0].Text != "Não cumulativo" {
		t.Fatalf("resolved = %+v", resolved)
	}

	path := "/cupons/lojista/" + claimed.Codigo + "/status"
	resp = ts.do(http.MethodPatch, path, merchant, map[string]string{"userEmail": "someone@else.com"})
	expectError(t, resp, http.StatusConflict, CodeCodeMismatch)

	resp = ts.do(http.MethodPatch, path, merchant, map[string]any{"status": 2, "userEmail": "Carlos@Mail.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm = %d", resp.StatusCode)
	}
	used := decodeBody[response.ValidacaoResponse](t, resp)
	if used.Status != int(domain.InstanceUsed) || used.UsadoEm == nil {
		t.Fatalf("used = %+v", used)
	}

	resp = ts.do(http.MethodPatch, path, merchant, map[string]string{})
	expectError(t, resp, http.StatusConflict, CodeAlreadyUsed)

	resp = ts.do(http.MethodGet, "/cupons/lojista/ultimos-validados", merchant, nil)
	last := decodeBody[[]response.ValidacaoResponse](t, resp)
	if len(last) != 1 || last[0].ID != claimed.ID {
		t.Fatalf("ultimos-validados = %+v", last)
	}
}

func TestResolveExpiredAndForeign(t *testing.T) {
	ts := newTestServer(t)
	user := ts.token(ts.customer, "")

	resp := ts.do(http.MethodPost, "/cupons/user", user, map[string]int64{"cupomId": ts.coupon.ID})
	claimed := decodeBody[response.CupomUsuarioResponse](t, resp)

	stranger := ts.repo.PutUser(&domain.User{Name: "Bruno", Email: "bruno@loja.com", Role: domain.RoleLojista})
	resp = ts.do(http.MethodGet, "/cupons/lojista/verificar/cupom/"+claimed.Codigo, ts.token(stranger, ""), nil)
	expectError(t, resp, http.StatusNotFound, CodeNotFound)

	ts.now = t0.Add(25 * time.Hour)
	resp = ts.do(http.MethodGet, "/cupons/lojista/verificar/cupom/"+claimed.Codigo, ts.token(ts.owner, ""), nil)
	expectError(t, resp, http.StatusGone, CodeExpired)
}

func TestManagementValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	merchant := ts.token(ts.owner, "")

	resp := ts.do(http.MethodPost, "/lojas", merchant, map[string]any{"nome": "Sem endereço"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("create store = %d", resp.StatusCode)
	}
	e := decodeBody[response.ErrorResponse](t, resp)
	if e.Code != CodeInvalidInput || e.Field == "" {
		t.Fatalf("error = %+v", e)
	}

	resp = ts.do(http.MethodPost, "/cupons", merchant, map[string]any{
		"campanha_id": ts.campaign.ID,
		"tipo":        "%",
		"valor":       150,
		"qtd":         10,
		"validade":    7,
	})
	expectError(t, resp, http.StatusBadRequest, CodeInvalidInput)

	stranger := ts.repo.PutUser(&domain.User{Name: "Bruno", Email: "bruno@loja.com", Role: domain.RoleLojista})
	resp = ts.do(http.MethodGet, fmt.Sprintf("/lojas/%d", ts.store.ID), ts.token(stranger, ""), nil)
	expectError(t, resp, http.StatusNotFound, CodeNotFound)

	resp = ts.do(http.MethodDelete, fmt.Sprintf("/lojas/%d/lojistas/%d", ts.store.ID, ts.owner.ID), merchant, nil)
	expectError(t, resp, http.StatusBadRequest, CodeInvalidInput)
}

func TestCouponManagementRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	merchant := ts.token(ts.owner, "")

	resp := ts.do(http.MethodPost, "/cupons", merchant, map[string]any{
		"campanha_id": ts.campaign.ID,
		"tipo":        "%",
		"valor":       "15.5",
		"qtd":         3,
		"validade":    7,
		"regras":      map[string]string{"1": "Somente à vista"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create coupon = %d", resp.StatusCode)
	}
	created := decodeBody[response.CupomResponse](t, resp)
	if len(created.Codigo) != domain.CodeLength || !created.Valor.Equal(decimal.RequireFromString("15.5")) {
		t.Fatalf("created = %+v", created)
	}

	resp = ts.do(http.MethodGet, fmt.Sprintf("/cupons/lojista/campanha/%d", ts.campaign.ID), merchant, nil)
	list := decodeBody[[]response.CupomResponse](t, resp)
	if len(list) != 2 {
		t.Fatalf("coupons of campaign = %d", len(list))
	}

	resp = ts.do(http.MethodDelete, fmt.Sprintf("/cupons/%d", created.ID), merchant, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	resp = ts.do(http.MethodGet, fmt.Sprintf("/cupons/lojista/edit/%d", created.ID), merchant, nil)
	expectError(t, resp, http.StatusNotFound, CodeNotFound)
}
