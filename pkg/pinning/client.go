// Package pinning uploads media to the content-addressed pinning provider
// and rewrites gateway URLs. The provider is an external collaborator: this
// client only does the multipart POST and trusts the returned hash.
package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Pin is the provider's receipt for one upload.
type Pin struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

// Client posts files to one pinning endpoint.
type Client struct {
	endpoint string
	apiKey   string
	hc       *http.Client
}

// New returns a client for the given endpoint. apiKey may be empty for
// unauthenticated providers.
func New(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, hc: &http.Client{Timeout: timeout}}
}

// Upload streams one file as multipart form data and returns the content
// hash plus a retrievable gateway URL.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (Pin, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return Pin{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return Pin{}, fmt.Errorf("pinning upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Pin{}, fmt.Errorf("pinning upload: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pin Pin
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return Pin{}, fmt.Errorf("pinning upload: bad response: %w", err)
	}
	if pin.Hash == "" {
		return Pin{}, fmt.Errorf("pinning upload: response missing hash")
	}
	return pin, nil
}

// RewriteGateway swaps the gateway base of a pinned URL for the same hash.
// It is a pure string transform, not a new upload: the hash (last path
// segment) is kept and everything before it is replaced.
func RewriteGateway(url, gatewayBase string) string {
	i := strings.LastIndex(url, "/")
	if i < 0 {
		return url
	}
	hash := url[i+1:]
	if hash == "" {
		return url
	}
	return strings.TrimRight(gatewayBase, "/") + "/" + hash
}
