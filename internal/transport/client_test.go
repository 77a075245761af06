package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/infra/resilience"
	"github.com/peerbr/invest-client-go/internal/transport"

	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, serverURL string, token string) *transport.Client {
	t.Helper()
	return transport.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		serverURL,
		staticToken(token),
		resilience.NewCircuitBreaker(t.Name()),
		resilience.NewBulkhead(10),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestClient_BearerHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.User{ID: 1, Nome: "Maria"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok-123")
	if _, err := api.Profile(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestClient_AnonymousOmitsHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(domain.LoginResponse{AccessToken: "tok"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "")
	_, err := api.Login(context.Background(), &domain.LoginRequest{CPF: "12345678909", Senha: "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hasAuth {
		t.Errorf("anonymous request must not carry Authorization, got %q", gotAuth)
	}
}

func TestClient_ServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Saldo insuficiente"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	_, err := api.Invest(context.Background(), 1, 500)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	re, ok := err.(*domain.ErrRequest)
	if !ok {
		t.Fatalf("expected *domain.ErrRequest, got %T", err)
	}
	if re.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", re.Status)
	}
	if re.Error() != "Saldo insuficiente" {
		t.Errorf("expected server message, got %q", re.Error())
	}
}

func TestClient_JWTErrorShape(t *testing.T) {
	// flask-jwt-extended reports auth failures under "msg", not "error"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Token has expired"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "stale")
	_, err := api.Profile(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "Token has expired" {
		t.Errorf("expected msg field to be used, got %q", err.Error())
	}
	if !domain.IsAuthInvalid(err) {
		t.Error("401 should read as invalid credential")
	}
}

func TestClient_UnparsableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	_, err := api.Balance(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "Erro na requisição" {
		t.Errorf("expected generic fallback, got %q", err.Error())
	}
}

func TestClient_NoRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	if _, err := api.Holdings(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("a failed request must not be retried, server saw %d calls", n)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	api := newTestClient(t, server.URL, "tok")
	_, err := api.Transactions(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	re, ok := err.(*domain.ErrRequest)
	if !ok {
		t.Fatalf("expected *domain.ErrRequest, got %T", err)
	}
	if re.Status != 0 {
		t.Errorf("network failure should carry status 0, got %d", re.Status)
	}
	if re.Err == nil {
		t.Error("expected underlying transport error to be preserved")
	}
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	for i := 0; i < 10; i++ {
		api.Balance(context.Background())
	}

	_, err := api.Balance(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "Serviço indisponível no momento" {
		t.Errorf("expected fail-fast message once the breaker opens, got %q", err.Error())
	}
}

func TestClient_OffersCategoryFilter(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("categoria")
		json.NewEncoder(w).Encode([]domain.Offer{{ID: 1, Titulo: "CRI Alpha"}})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	offers, err := api.Offers(context.Background(), domain.CategoryCRI)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery != "cri" {
		t.Errorf("expected categoria=cri, got %q", gotQuery)
	}
	if len(offers) != 1 || offers[0].Titulo != "CRI Alpha" {
		t.Errorf("unexpected offers: %+v", offers)
	}
}

func TestClient_IdempotencyKeyOnMutations(t *testing.T) {
	keys := map[string]bool{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if k := r.Header.Get("X-Idempotency-Key"); k != "" {
			keys[k] = true
		}
		json.NewEncoder(w).Encode(domain.PixCharge{PixID: "pix-1"})
	}))
	defer server.Close()

	api := newTestClient(t, server.URL, "tok")
	if _, err := api.GeneratePix(context.Background(), 100); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := api.GeneratePix(context.Background(), 100); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("each submission should carry a fresh idempotency key, got %d distinct", len(keys))
	}
}
