// Package engage reconciles per-user engagement state with ledger truth.
// Two independent state machines exist per (wallet, post): likes are gated
// on a confirmed ledger write and only then marked locally, bookmarks are
// purely local and never touch the ledger. Displayed counters always come
// from the ledger aggregate; the local marks only answer "did this wallet
// do it".
package engage

import (
	"context"
	"errors"
	"sync"

	"blocksd/pkg/logger"
	"blocksd/pkg/models"
	"blocksd/pkg/store"
	"blocksd/pkg/tx"
)

// ErrSelfLike rejects a wallet liking its own post. Checked before any
// ledger write is attempted.
var ErrSelfLike = errors.New("cannot like your own post")

// Reconciler owns the local engagement marks and the like write path.
type Reconciler struct {
	mu  sync.Mutex
	sub tx.Submitter
}

// New returns a Reconciler submitting like writes through sub.
func New(sub tx.Submitter) *Reconciler {
	return &Reconciler{sub: sub}
}

// HasLiked reports whether the wallet holds a confirmed like mark. Pure
// local read; errors degrade to false.
func (r *Reconciler) HasLiked(wallet string, postID uint64) bool {
	ok, err := store.HasMark(wallet, store.MarkLike, postID)
	if err != nil {
		logger.Warn("like_mark_read_failed", "wallet", wallet, "post", postID, "err", err)
		return false
	}
	return ok
}

// HasBookmarked reports whether the wallet bookmarked the post locally.
func (r *Reconciler) HasBookmarked(wallet string, postID uint64) bool {
	ok, err := store.HasMark(wallet, store.MarkBookmark, postID)
	if err != nil {
		logger.Warn("bookmark_mark_read_failed", "wallet", wallet, "post", postID, "err", err)
		return false
	}
	return ok
}

// ToggleLike flips the wallet's like state for the post. The ledger write
// goes first and the local mark is only touched after the node confirms, so
// a rejected write leaves local state exactly as it was. A rejected write is
// never retried here: a duplicate like submission has real reputation
// effects on the author's credit rating.
func (r *Reconciler) ToggleLike(ctx context.Context, wallet string, post *models.Post) (liked bool, err error) {
	if wallet == post.Author.String() {
		return false, ErrSelfLike
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := store.HasMark(wallet, store.MarkLike, post.ID)
	if err != nil {
		return false, err
	}

	payload := tx.LikePost(post.ID)
	if cur {
		payload = tx.UnlikePost(post.ID)
	}
	sig, err := r.sub.SubmitAndConfirm(ctx, wallet, payload)
	if err != nil {
		// no local mutation on rejection
		return cur, err
	}

	if cur {
		err = store.ClearMark(wallet, store.MarkLike, post.ID)
	} else {
		err = store.SetMark(wallet, store.MarkLike, post.ID)
	}
	if err != nil {
		// The write confirmed but the mark failed to persist. Surface the
		// error; the ledger aggregate is still correct and a retry of the
		// mark is safe.
		return cur, err
	}
	logger.Info("like_toggled", "wallet", wallet, "post", post.ID, "liked", !cur, "sig", sig)
	return !cur, nil
}

// ToggleBookmark flips the wallet's bookmark for the post. Purely local and
// idempotent under double toggle; the ledger is never contacted.
func (r *Reconciler) ToggleBookmark(wallet string, postID uint64) (bookmarked bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := store.HasMark(wallet, store.MarkBookmark, postID)
	if err != nil {
		return false, err
	}
	if cur {
		err = store.ClearMark(wallet, store.MarkBookmark, postID)
	} else {
		err = store.SetMark(wallet, store.MarkBookmark, postID)
	}
	if err != nil {
		return cur, err
	}
	return !cur, nil
}

// PostView is a post overlaid with one wallet's local engagement flags. The
// counters inside Post remain the ledger aggregates untouched.
type PostView struct {
	*models.Post
	Liked      bool `json:"liked"`
	Bookmarked bool `json:"bookmarked"`
}

// Overlay attaches the wallet's local flags to a post. The like counter and
// kill-zone flag pass through unchanged from the ledger-decoded entity.
func (r *Reconciler) Overlay(wallet string, post *models.Post) PostView {
	v := PostView{Post: post}
	if wallet != "" {
		v.Liked = r.HasLiked(wallet, post.ID)
		v.Bookmarked = r.HasBookmarked(wallet, post.ID)
	}
	return v
}

// Likes returns every post id the wallet has liked; Bookmarks likewise.
func (r *Reconciler) Likes(wallet string) ([]uint64, error) {
	return store.ListMarks(wallet, store.MarkLike)
}

// Bookmarks returns every post id the wallet has bookmarked.
func (r *Reconciler) Bookmarks(wallet string) ([]uint64, error) {
	return store.ListMarks(wallet, store.MarkBookmark)
}

// Clear drops all engagement marks for a wallet (explicit user action).
func (r *Reconciler) Clear(wallet string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return store.ClearWallet(wallet)
}
