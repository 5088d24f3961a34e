package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blocksd/pkg/api/handlers"
	"blocksd/pkg/cache"
	"blocksd/pkg/engage"
	"blocksd/pkg/layout"
	"blocksd/pkg/ledger"
	"blocksd/pkg/models"
	"blocksd/pkg/store"
)

type fakeSubmitter struct {
	calls  int
	reject bool
}

func (f *fakeSubmitter) SubmitAndConfirm(_ context.Context, _ string, _ []byte) (string, error) {
	f.calls++
	if f.reject {
		return "", &ledger.WriteRejectedError{Code: -32002, Message: "rejected"}
	}
	return "sig", nil
}

func key(fill byte) models.Key {
	var k models.Key
	for i := range k {
		k[i] = fill
	}
	return k
}

func newTestRouter(t *testing.T, sub *fakeSubmitter) (http.Handler, *cache.Cache) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	c := cache.New(nil)
	h := Router(handlers.Deps{
		Cache:  c,
		Engage: engage.New(sub),
		Submit: sub,
	})
	return h, c
}

func TestFeedNewestFirstWithOverlay(t *testing.T) {
	h, c := newTestRouter(t, &fakeSubmitter{})
	author := key(1)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 1, Author: author, Content: "old", Timestamp: 10, Likes: 3}})
	c.Put("p2", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 2, Author: author, Content: "new", Timestamp: 20}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/feed", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("feed: %d %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Posts []struct {
			ID    uint64 `json:"id"`
			Likes uint64 `json:"likes"`
			Liked bool   `json:"liked"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Posts) != 2 || out.Posts[0].ID != 2 || out.Posts[1].ID != 1 {
		t.Fatalf("order: %+v", out.Posts)
	}
	if out.Posts[1].Likes != 3 {
		t.Fatalf("like counter must be the ledger aggregate, got %d", out.Posts[1].Likes)
	}
}

func TestLikeToggleOverHTTP(t *testing.T) {
	sub := &fakeSubmitter{}
	h, c := newTestRouter(t, sub)
	author := key(2)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 7, Author: author, Content: "x", Timestamp: 1}})

	wallet := key(3).String()
	req := httptest.NewRequest(http.MethodPost, "/v1/posts/7/like", nil)
	req.Header.Set("X-Wallet", wallet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("like: %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"liked":true`) {
		t.Fatalf("expected liked true: %s", rr.Body.String())
	}
	if sub.calls != 1 {
		t.Fatalf("expected 1 ledger write, got %d", sub.calls)
	}
}

func TestSelfLikeRejectedBeforeWrite(t *testing.T) {
	sub := &fakeSubmitter{}
	h, c := newTestRouter(t, sub)
	author := key(4)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 9, Author: author, Content: "mine", Timestamp: 1}})

	req := httptest.NewRequest(http.MethodPost, "/v1/posts/9/like", nil)
	req.Header.Set("X-Wallet", author.String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("self-like: expected 400, got %d", rr.Code)
	}
	if sub.calls != 0 {
		t.Fatalf("self-like must not reach the ledger, got %d calls", sub.calls)
	}
}

func TestBookmarkStaysLocal(t *testing.T) {
	sub := &fakeSubmitter{}
	h, c := newTestRouter(t, sub)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 5, Author: key(6), Content: "x", Timestamp: 1}})

	req := httptest.NewRequest(http.MethodPost, "/v1/posts/5/bookmark", nil)
	req.Header.Set("X-Wallet", key(7).String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("bookmark: %d %s", rr.Code, rr.Body.String())
	}
	if sub.calls != 0 {
		t.Fatalf("bookmark must never contact the ledger, got %d calls", sub.calls)
	}
}

func TestCreateCommunityCap(t *testing.T) {
	sub := &fakeSubmitter{}
	h, c := newTestRouter(t, sub)
	creator := key(8)
	for i := uint64(1); i <= 3; i++ {
		c.Put(string(rune('a'+i)), cache.Entry{Kind: layout.KindCommunity, Entity: &models.Community{ID: i, Name: "c", Creator: creator, MemberCount: 1}})
	}

	body := strings.NewReader(`{"name":"sb/elite","description":"d"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/communities", body)
	req.Header.Set("X-Wallet", creator.String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 at creator cap, got %d %s", rr.Code, rr.Body.String())
	}
	if sub.calls != 0 {
		t.Fatalf("capped create must not submit, got %d", sub.calls)
	}
}

func TestEngagementListAndClear(t *testing.T) {
	sub := &fakeSubmitter{}
	h, c := newTestRouter(t, sub)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 3, Author: key(9), Content: "x", Timestamp: 1}})

	wallet := key(10).String()
	req := httptest.NewRequest(http.MethodPost, "/v1/posts/3/bookmark", nil)
	req.Header.Set("X-Wallet", wallet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("bookmark: %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/engagement", nil)
	req.Header.Set("X-Wallet", wallet)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), `"bookmarks":[3]`) {
		t.Fatalf("engagement list: %s", rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/engagement", nil)
	req.Header.Set("X-Wallet", wallet)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear: %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/engagement", nil)
	req.Header.Set("X-Wallet", wallet)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), `"bookmarks":[]`) {
		t.Fatalf("engagement after clear: %s", rr.Body.String())
	}
}

func TestRejectedWriteSurfaces(t *testing.T) {
	sub := &fakeSubmitter{reject: true}
	h, c := newTestRouter(t, sub)
	c.Put("p1", cache.Entry{Kind: layout.KindPost, Entity: &models.Post{ID: 4, Author: key(11), Content: "x", Timestamp: 1}})

	req := httptest.NewRequest(http.MethodPost, "/v1/posts/4/like", nil)
	req.Header.Set("X-Wallet", key(12).String())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rejected write: expected 422, got %d %s", rr.Code, rr.Body.String())
	}
}
