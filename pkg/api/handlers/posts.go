package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"blocksd/pkg/auth"
	"blocksd/pkg/engage"
	"blocksd/pkg/models"
	"blocksd/pkg/tx"
	"blocksd/pkg/utils"
	"blocksd/pkg/validation"

	"github.com/gorilla/mux"
)

// RegisterPosts registers feed and post routes. Reads go on pub; writes and
// engagement toggles go on priv, which requires a validated wallet.
func RegisterPosts(pub, priv *mux.Router) {
	pub.HandleFunc("/feed", getFeed).Methods(http.MethodGet)
	pub.HandleFunc("/posts/{id}", getPost).Methods(http.MethodGet)
	pub.HandleFunc("/posts/{id}/comments", listComments).Methods(http.MethodGet)

	priv.HandleFunc("/posts", createPost).Methods(http.MethodPost)
	priv.HandleFunc("/posts/{id}/comments", createComment).Methods(http.MethodPost)
	priv.HandleFunc("/posts/{id}/like", toggleLike).Methods(http.MethodPost)
	priv.HandleFunc("/posts/{id}/bookmark", toggleBookmark).Methods(http.MethodPost)
}

func postID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// optionalWallet returns the caller wallet when the X-Wallet header is
// present and valid; feed reads work without one.
func optionalWallet(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("X-Wallet"))
	if raw == "" {
		return ""
	}
	if _, err := models.KeyFromBase58(raw); err != nil {
		return ""
	}
	return raw
}

// getFeed handles GET /feed?limit=&offset=. Posts come back newest-first
// with the caller's local engagement flags overlaid when a wallet is given.
func getFeed(w http.ResponseWriter, r *http.Request) {
	posts := sortedPosts()
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if offset > len(posts) {
		offset = len(posts)
	}
	posts = posts[offset:]
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(posts) {
			posts = posts[:n]
		}
	}

	wallet := optionalWallet(r)
	out := make([]engage.PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, deps.Engage.Overlay(wallet, p))
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Posts []engage.PostView `json:"posts"`
	}{Posts: out})
}

func getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	_, post, ok := findPost(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, deps.Engage.Overlay(optionalWallet(r), post))
}

// createPost handles POST /posts. The wallet signs client-side; the gateway
// validates, builds the payload and submits.
func createPost(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	var in struct {
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidatePost(in.Content, in.Images); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sig, err := submit(r.Context(), "create_post", wallet.String(), tx.CreatePost(in.Content, in.Images))
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}

// createComment handles POST /posts/{id}/comments.
func createComment(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	id, ok := postID(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	addr, _, ok := findPost(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateComment(in.Content); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sig, err := submit(r.Context(), "comment", wallet.String(), tx.CommentOnPost(in.Content, id))
	if err != nil {
		writeError(w, err)
		return
	}
	// the comment counter on the parent changed on-ledger
	deps.Cache.Invalidate(addr)
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"signature": sig})
}

// listComments handles GET /posts/{id}/comments, oldest first.
func listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	out := make([]*models.Comment, 0)
	for _, c := range deps.Cache.Comments() {
		if c.ParentID == id {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Comments []*models.Comment `json:"comments"`
	}{Comments: out})
}

// toggleLike handles POST /posts/{id}/like. The ledger write is gated in
// the reconciler; on confirmation the post's account is invalidated so the
// displayed counter is refetched from ledger truth.
func toggleLike(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	id, ok := postID(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	addr, post, ok := findPost(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	liked, err := deps.Engage.ToggleLike(r.Context(), wallet.String(), post)
	if err != nil {
		writeError(w, err)
		return
	}
	deps.Cache.Invalidate(addr)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"liked": liked})
}

// toggleBookmark handles POST /posts/{id}/bookmark. Purely local.
func toggleBookmark(w http.ResponseWriter, r *http.Request) {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "wallet required")
		return
	}
	id, ok := postID(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, _, ok := findPost(id); !ok {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	marked, err := deps.Engage.ToggleBookmark(wallet.String(), id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"bookmarked": marked})
}
