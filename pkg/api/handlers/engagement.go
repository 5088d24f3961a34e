package handlers

import (
	"net/http"

	"blocksd/pkg/auth"
	"blocksd/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterEngagement registers the wallet-local engagement routes. Both need
// a validated wallet.
func RegisterEngagement(priv *mux.Router) {
	priv.HandleFunc("/engagement", getEngagement).Methods(http.MethodGet)
	priv.HandleFunc("/engagement", clearEngagement).Methods(http.MethodDelete)
}

// getEngagement handles GET /engagement: the wallet's liked and bookmarked
// post ids from the local store.
func getEngagement(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	likes, err := deps.Engage.Likes(wallet.String())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	marks, err := deps.Engage.Bookmarks(wallet.String())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Likes     []uint64 `json:"likes"`
		Bookmarks []uint64 `json:"bookmarks"`
	}{Likes: likes, Bookmarks: marks})
}

// clearEngagement handles DELETE /engagement: drops every local mark for
// the wallet. Ledger state is untouched.
func clearEngagement(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	if err := deps.Engage.Clear(wallet.String()); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
