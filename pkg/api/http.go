// Package api assembles the gateway's HTTP surface.
package api

import (
	"net/http"

	"blocksd/pkg/api/handlers"
	"blocksd/pkg/auth"

	"github.com/gorilla/mux"
)

// Router builds the versioned API router. Public reads live on one
// subrouter; wallet-scoped writes live on another behind the X-Wallet
// middleware; admin routes are scoped to admin API keys by the auth
// gateway, not here.
func Router(d handlers.Deps) http.Handler {
	handlers.Setup(d)

	r := mux.NewRouter()
	pub := r.PathPrefix("/v1").Subrouter()
	priv := r.PathPrefix("/v1").Subrouter()
	priv.Use(auth.RequireWallet)

	handlers.RegisterPosts(pub, priv)
	handlers.RegisterProfiles(pub, priv)
	handlers.RegisterCommunities(pub, priv)
	handlers.RegisterEngagement(priv)
	handlers.RegisterUploads(priv)
	handlers.RegisterAdmin(pub)

	return r
}
