package pinning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "cat.png" || string(body) != "meow" {
			t.Errorf("unexpected upload: %s %q", hdr.Filename, body)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k1" {
			t.Errorf("auth header: %q", got)
		}
		_ = json.NewEncoder(w).Encode(Pin{Hash: "QmCat", URL: "https://gw.example/ipfs/QmCat"})
	}))
	defer srv.Close()

	c := New(srv.URL, "k1", 5*time.Second)
	pin, err := c.Upload(context.Background(), "cat.png", strings.NewReader("meow"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if pin.Hash != "QmCat" || pin.URL != "https://gw.example/ipfs/QmCat" {
		t.Fatalf("pin: %+v", pin)
	}
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	if _, err := c.Upload(context.Background(), "x", strings.NewReader("y")); err == nil {
		t.Fatalf("expected error on http 403")
	}
}

func TestRewriteGateway(t *testing.T) {
	cases := []struct {
		url, base, want string
	}{
		{"https://gw.example/ipfs/QmCat", "https://alt.example/ipfs", "https://alt.example/ipfs/QmCat"},
		{"https://gw.example/ipfs/QmCat", "https://alt.example/ipfs/", "https://alt.example/ipfs/QmCat"},
		{"no-slashes", "https://alt.example", "no-slashes"},
	}
	for _, tc := range cases {
		if got := RewriteGateway(tc.url, tc.base); got != tc.want {
			t.Fatalf("RewriteGateway(%q, %q) = %q, want %q", tc.url, tc.base, got, tc.want)
		}
	}
}
