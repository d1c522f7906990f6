package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeAPI serves the three merchant endpoints for one code.
type fakeAPI struct {
	mu   sync.Mutex
	used bool
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	validation := func(status int) map[string]any {
		return map[string]any{
			"codigo":          "ABCD2345",
			"codigo_exibicao": "abcd-2345",
			"tipo":            "%",
			"valor":           "15",
			"status":          status,
			"criado_em":       time.Now().Add(-time.Hour),
			"expira_em":       time.Now().Add(23 * time.Hour),
			"regras":          json.RawMessage(`{"2":"Uma por mesa","10":"Não cumulativo"}`),
			"usuario":         map[string]string{"nome": "Carlos Lima", "email": "carlos@mail.com"},
		}
	}
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cupons/lojista/verificar/cupom/{code}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			reply(w, 401, map[string]string{"code": "UNAUTHORIZED"})
			return
		}
		if r.PathValue("code") != "ABCD2345" {
			reply(w, 404, map[string]string{"code": "NOT_FOUND"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.used {
			reply(w, 409, map[string]string{"code": "ALREADY_USED"})
			return
		}
		reply(w, 200, validation(1))
	})
	mux.HandleFunc("PATCH /cupons/lojista/{code}/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserEmail string `json:"userEmail"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.UserEmail != "carlos@mail.com" {
			t.Errorf("userEmail = %q", body.UserEmail)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.used {
			reply(w, 409, map[string]string{"code": "ALREADY_USED"})
			return
		}
		f.used = true
		reply(w, 200, validation(2))
	})
	mux.HandleFunc("GET /cupons/lojista/ultimos-validados", func(w http.ResponseWriter, r *http.Request) {
		reply(w, 200, []any{})
	})
	return mux
}

func runCLI(t *testing.T, url, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-api", url, "-token", "tok"}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestResolveThenConfirm(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	code, out, _ := runCLI(t, srv.URL, "", "resolve", "ABCD2345")
	if code != 0 || !strings.Contains(out, "Carlos Lima") || !strings.Contains(out, "abcd-2345") {
		t.Fatalf("resolve exit=%d out=%s", code, out)
	}
	first, second := strings.Index(out, "Regra 2:"), strings.Index(out, "Regra 10:")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("rules out of order:\n%s", out)
	}

	code, out, _ = runCLI(t, srv.URL, "", "confirm", "ABCD2345")
	if code != 0 || !strings.Contains(out, "utilizado com sucesso") {
		t.Fatalf("confirm exit=%d out=%s", code, out)
	}

	code, _, errOut := runCLI(t, srv.URL, "", "confirm", "ABCD2345")
	if code != 1 || !strings.Contains(errOut, "já foi utilizado") {
		t.Fatalf("second confirm exit=%d err=%s", code, errOut)
	}
}

func TestUnknownCodeHasItsOwnMessage(t *testing.T) {
	srv := httptest.NewServer((&fakeAPI{}).handler(t))
	defer srv.Close()

	code, _, errOut := runCLI(t, srv.URL, "", "resolve", "ZZZZ9999")
	if code != 1 || !strings.Contains(errOut, "Código inválido") {
		t.Fatalf("exit=%d err=%s", code, errOut)
	}
}

func TestScanIgnoresRepeatsAndConfirms(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	// The scanner reads the same QR twice before the owner answers.
	stdin := "ABCD2345\nABCD2345\ns\nABCD2345\n"
	code, out, _ := runCLI(t, srv.URL, stdin, "scan")
	if code != 0 {
		t.Fatalf("exit=%d", code)
	}
	if n := strings.Count(out, "Confirmar uso?"); n != 1 {
		t.Fatalf("prompted %d times:\n%s", n, out)
	}
	if !strings.Contains(out, "utilizado com sucesso") || !strings.Contains(out, "já foi utilizado") {
		t.Fatalf("out:\n%s", out)
	}
}

func TestRevokedSessionIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"SESSION_REVOKED","message":"session revoked"}`))
	}))
	defer srv.Close()

	code, _, errOut := runCLI(t, srv.URL, "", "recent")
	if code != 1 || !strings.Contains(errOut, "outro dispositivo") {
		t.Fatalf("exit=%d err=%s", code, errOut)
	}
}

func TestMissingToken(t *testing.T) {
	t.Setenv("CUPOM_TOKEN", "")
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"recent"}, strings.NewReader(""), &out, &errOut); code != 2 {
		t.Fatalf("exit = %d", code)
	}
}
