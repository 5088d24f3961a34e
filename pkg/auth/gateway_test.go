package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blocksd/pkg/models"
)

func testCfg() SecConfig {
	return SecConfig{
		RPS:          100,
		Burst:        100,
		FrontendKeys: map[string]struct{}{"fk1": {}},
		AdminKeys:    map[string]struct{}{"ak1": {}},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestUnauthenticatedBlocked(t *testing.T) {
	h := AuthenticateRequestMiddleware(testCfg())(okHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/posts", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestFrontendKeyScopes(t *testing.T) {
	h := AuthenticateRequestMiddleware(testCfg())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	req.Header.Set("X-API-Key", "fk1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("frontend on public api: expected 200, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", nil)
	req.Header.Set("X-API-Key", "fk1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("frontend on admin api: expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/refresh", nil)
	req.Header.Set("Authorization", "Bearer ak1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin on admin api: expected 200, got %d", rr.Code)
	}
}

func TestHealthBypass(t *testing.T) {
	h := AuthenticateRequestMiddleware(testCfg())(okHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz should bypass auth, got %d", rr.Code)
	}
}

func TestRequireWallet(t *testing.T) {
	var got models.Key
	h := RequireWallet(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = WalletFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/posts/1/like", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing wallet: expected 401, got %d", rr.Code)
	}

	var k models.Key
	k[0] = 9
	req = httptest.NewRequest(http.MethodPost, "/v1/posts/1/like", nil)
	req.Header.Set("X-Wallet", k.String())
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid wallet: expected 200, got %d", rr.Code)
	}
	if got != k {
		t.Fatalf("wallet not injected into context")
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/posts/1/like", nil)
	req.Header.Set("X-Wallet", "not-base58-!!")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad wallet: expected 400, got %d", rr.Code)
	}
}
