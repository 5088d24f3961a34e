package handlers

import (
	"net/http"

	"blocksd/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterAdmin registers admin routes. The auth gateway scopes these to
// admin keys.
func RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/admin/refresh", triggerRefresh).Methods(http.MethodPost)
	r.HandleFunc("/admin/stats", getStats).Methods(http.MethodGet)
}

// triggerRefresh handles POST /admin/refresh: one synchronous full rescan.
func triggerRefresh(w http.ResponseWriter, r *http.Request) {
	if deps.Refresh == nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}
	if err := deps.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// getStats handles GET /admin/stats: cached entity counts.
func getStats(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{
		"cached":      deps.Cache.Len(),
		"posts":       len(deps.Cache.Posts()),
		"profiles":    len(deps.Cache.Profiles()),
		"comments":    len(deps.Cache.Comments()),
		"communities": len(deps.Cache.Communities()),
	})
}
