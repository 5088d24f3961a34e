package auth

import (
	"context"
	"net/http"
	"strings"

	"blocksd/pkg/logger"
	"blocksd/pkg/models"
	"blocksd/pkg/utils"
)

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend
	RoleAdmin
)

// SecConfig mirrors the security-related configuration used to drive
// authentication, CORS and rate limiting behavior. Put here so limiter.go
// and gateway.go can reference the shared type.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	FrontendKeys   map[string]struct{}
	AdminKeys      map[string]struct{}
}

type ctxWalletKey struct{}

// RequireWallet validates the X-Wallet header as a base58 account key and
// injects it into the request context. Engagement and write endpoints hang
// off this; read-only endpoints do not use it.
func RequireWallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("X-Wallet"))
		if raw == "" {
			logger.Warn("missing_wallet_header", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "missing X-Wallet header")
			return
		}
		k, err := models.KeyFromBase58(raw)
		if err != nil {
			logger.Warn("invalid_wallet_header", "path", r.URL.Path, "err", err)
			utils.JSONError(w, http.StatusBadRequest, "invalid wallet key")
			return
		}
		ctx := context.WithValue(r.Context(), ctxWalletKey{}, k)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WalletFromContext returns the validated caller wallet, if any.
func WalletFromContext(ctx context.Context) (models.Key, bool) {
	if v := ctx.Value(ctxWalletKey{}); v != nil {
		if k, ok := v.(models.Key); ok {
			return k, true
		}
	}
	return models.Key{}, false
}
