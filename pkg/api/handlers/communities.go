package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"blocksd/pkg/auth"
	"blocksd/pkg/models"
	"blocksd/pkg/tx"
	"blocksd/pkg/utils"
	"blocksd/pkg/validation"

	"github.com/gorilla/mux"
)

// RegisterCommunities registers community routes.
func RegisterCommunities(pub, priv *mux.Router) {
	pub.HandleFunc("/communities", listCommunities).Methods(http.MethodGet)
	pub.HandleFunc("/communities/{id}", getCommunity).Methods(http.MethodGet)

	priv.HandleFunc("/communities", createCommunity).Methods(http.MethodPost)
	priv.HandleFunc("/communities/{id}/join", joinCommunity).Methods(http.MethodPost)
}

// listCommunities handles GET /communities, sorted by member count.
func listCommunities(w http.ResponseWriter, r *http.Request) {
	out := make([]*models.Community, 0)
	for _, c := range deps.Cache.Communities() {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MemberCount != out[j].MemberCount {
			return out[i].MemberCount > out[j].MemberCount
		}
		return out[i].ID < out[j].ID
	})
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Communities []*models.Community `json:"communities"`
	}{Communities: out})
}

func getCommunity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid community id")
		return
	}
	_, c, ok := findCommunity(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "community not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// createCommunity handles POST /communities. The per-creator cap is program
// truth; checking the cached count here turns a doomed write into a local
// 409 but the program remains the enforcer.
func createCommunity(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	var in struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Avatar      string   `json:"avatar"`
		Rules       []string `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateCommunity(in.Name, in.Description, in.Avatar, in.Rules); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if deps.Cache.CommunityCountByCreator(wallet) >= models.MaxCommunitiesPerCreator {
		utils.JSONError(w, http.StatusConflict, "community limit reached for creator")
		return
	}
	sig, err := submit(r.Context(), "create_community", wallet.String(),
		tx.CreateCommunity(in.Name, in.Description, in.Avatar, in.Rules))
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]any{
		"signature": sig,
		"private":   models.IsPrivateName(in.Name),
	})
}

// joinCommunity handles POST /communities/{id}/join. The member counter is
// ledger truth; the account is invalidated after confirmation.
func joinCommunity(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid community id")
		return
	}
	addr, _, ok := findCommunity(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "community not found")
		return
	}
	sig, err := submit(r.Context(), "join_community", wallet.String(), tx.JoinCommunity(id))
	if err != nil {
		writeError(w, err)
		return
	}
	deps.Cache.Invalidate(addr)
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}
