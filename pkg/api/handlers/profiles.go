package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"blocksd/pkg/auth"
	"blocksd/pkg/models"
	"blocksd/pkg/tx"
	"blocksd/pkg/utils"
	"blocksd/pkg/validation"

	"github.com/gorilla/mux"
)

// RegisterProfiles registers profile routes.
func RegisterProfiles(pub, priv *mux.Router) {
	pub.HandleFunc("/profiles/{wallet}", getProfile).Methods(http.MethodGet)
	pub.HandleFunc("/profiles/{wallet}/posts", listProfilePosts).Methods(http.MethodGet)

	priv.HandleFunc("/profiles", createProfile).Methods(http.MethodPost)
	priv.HandleFunc("/profiles", updateProfile).Methods(http.MethodPut)
	priv.HandleFunc("/profiles/{wallet}/follow", followProfile).Methods(http.MethodPost)
	priv.HandleFunc("/profiles/{wallet}/unfollow", unfollowProfile).Methods(http.MethodPost)
}

func walletParam(r *http.Request) (models.Key, bool) {
	k, err := models.KeyFromBase58(mux.Vars(r)["wallet"])
	return k, err == nil
}

// getProfile handles GET /profiles/{wallet}. Counters and the credit rating
// are the ledger-decoded values; nothing is recomputed here.
func getProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := walletParam(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid wallet key")
		return
	}
	_, p, ok := findProfileByOwner(owner)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

// listProfilePosts handles GET /profiles/{wallet}/posts, newest first.
func listProfilePosts(w http.ResponseWriter, r *http.Request) {
	owner, ok := walletParam(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid wallet key")
		return
	}
	out := make([]*models.Post, 0)
	for _, p := range deps.Cache.Posts() {
		if p.Author == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Posts []*models.Post `json:"posts"`
	}{Posts: out})
}

type profileInput struct {
	Username     string `json:"username"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profile_image"`
	CoverImage   string `json:"cover_image"`
}

// createProfile handles POST /profiles for the caller wallet.
func createProfile(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	var in profileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateProfile(in.Username, in.Bio, in.ProfileImage, in.CoverImage, true); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, _, exists := findProfileByOwner(wallet); exists {
		utils.JSONError(w, http.StatusConflict, "profile already exists")
		return
	}
	sig, err := submit(r.Context(), "create_profile", wallet.String(),
		tx.CreateProfile(in.Username, in.Bio, in.ProfileImage, in.CoverImage))
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}

// updateProfile handles PUT /profiles for the caller wallet. Username is
// immutable on-ledger and not accepted here.
func updateProfile(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	var in profileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateProfile("", in.Bio, in.ProfileImage, in.CoverImage, false); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	addr, _, exists := findProfileByOwner(wallet)
	if !exists {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	sig, err := submit(r.Context(), "update_profile", wallet.String(),
		tx.UpdateProfile(in.Bio, in.ProfileImage, in.CoverImage))
	if err != nil {
		writeError(w, err)
		return
	}
	deps.Cache.Invalidate(addr)
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}

// followProfile handles POST /profiles/{wallet}/follow. Follower counters
// are ledger truth; both profiles are invalidated after confirmation.
func followProfile(w http.ResponseWriter, r *http.Request) {
	toggleFollow(w, r, true)
}

// unfollowProfile handles POST /profiles/{wallet}/unfollow.
func unfollowProfile(w http.ResponseWriter, r *http.Request) {
	toggleFollow(w, r, false)
}

func toggleFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	target, ok := walletParam(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid wallet key")
		return
	}
	if target == wallet {
		utils.JSONError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}
	targetAddr, _, exists := findProfileByOwner(target)
	if !exists {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}

	payload := tx.FollowProfile(target)
	action := "follow"
	if !follow {
		payload = tx.UnfollowProfile(target)
		action = "unfollow"
	}
	sig, err := submit(r.Context(), action, wallet.String(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	deps.Cache.Invalidate(targetAddr)
	if selfAddr, _, ok := findProfileByOwner(wallet); ok {
		deps.Cache.Invalidate(selfAddr)
	}
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}
