// Package handlers holds the HTTP handlers for the public and admin API.
// Each Register* function mounts one resource's routes on the router; Setup
// injects the shared collaborators once at startup.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"blocksd/pkg/cache"
	"blocksd/pkg/engage"
	"blocksd/pkg/ledger"
	"blocksd/pkg/models"
	"blocksd/pkg/pinning"
	"blocksd/pkg/telemetry"
	"blocksd/pkg/tx"
	"blocksd/pkg/utils"
)

// Deps are the collaborators the handlers run against.
type Deps struct {
	Cache     *cache.Cache
	Engage    *engage.Reconciler
	Submit    tx.Submitter
	Pins      *pinning.Client
	Gateway   string
	MaxUpload int64
	Refresh   func(ctx context.Context) error
}

var deps Deps

// Setup injects the handler dependencies. Call once before serving.
func Setup(d Deps) { deps = d }

// findPost scans the cached posts for one id. The cache is keyed by account
// address; id lookups walk the snapshot, which is fine at client scale.
func findPost(id uint64) (addr string, post *models.Post, ok bool) {
	for a, p := range deps.Cache.Posts() {
		if p.ID == id {
			return a, p, true
		}
	}
	return "", nil, false
}

func findProfileByOwner(owner models.Key) (string, *models.Profile, bool) {
	for a, p := range deps.Cache.Profiles() {
		if p.Owner == owner {
			return a, p, true
		}
	}
	return "", nil, false
}

func findCommunity(id uint64) (string, *models.Community, bool) {
	for a, c := range deps.Cache.Communities() {
		if c.ID == id {
			return a, c, true
		}
	}
	return "", nil, false
}

// sortedPosts returns the cached posts newest-first.
func sortedPosts() []*models.Post {
	m := deps.Cache.Posts()
	out := make([]*models.Post, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// submit runs one ledger write and counts the outcome.
func submit(ctx context.Context, action, wallet string, payload []byte) (string, error) {
	sig, err := deps.Submit.SubmitAndConfirm(ctx, wallet, payload)
	outcome := "confirmed"
	if err != nil {
		outcome = "rejected"
	}
	telemetry.WritesSubmitted.WithLabelValues(action, outcome).Inc()
	return sig, err
}

// writeError maps write-path failures onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engage.ErrSelfLike):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrRateLimited):
		utils.JSONError(w, http.StatusTooManyRequests, "ledger rate limited")
	case ledger.IsWriteRejected(err):
		utils.JSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.JSONError(w, http.StatusBadGateway, err.Error())
	}
}
