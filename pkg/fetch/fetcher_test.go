package fetch

import (
	"context"
	"testing"
	"time"

	"blocksd/pkg/layout"
	"blocksd/pkg/ledger"
	"blocksd/pkg/models"
)

type fakeRPC struct {
	accounts      []ledger.Account
	scanFailures  int // rate-limit the first N scan calls
	scanCalls     int
	infoByAddr    map[string][]byte
	infoFailures  int // rate-limit the first N info calls
	infoCalls     int
}

func (f *fakeRPC) GetProgramAccounts(_ context.Context, _ string) ([]ledger.Account, error) {
	f.scanCalls++
	if f.scanCalls <= f.scanFailures {
		return nil, ledger.ErrRateLimited
	}
	return f.accounts, nil
}

func (f *fakeRPC) GetAccountInfo(_ context.Context, addr string) (*ledger.Account, error) {
	f.infoCalls++
	if f.infoCalls <= f.infoFailures {
		return nil, ledger.ErrRateLimited
	}
	data, ok := f.infoByAddr[addr]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &ledger.Account{Address: addr, Data: data}, nil
}

func key(fill byte) models.Key {
	var k models.Key
	for i := range k {
		k[i] = fill
	}
	return k
}

func fastCfg() Config {
	return Config{
		Program:   "Prog111",
		BatchSize: 64,
		BaseDelay: time.Millisecond,
		MaxDelay:  8 * time.Millisecond,
		Retries:   3,
	}
}

func TestScanMixedAccounts(t *testing.T) {
	// 1,000 accounts where every 10th carries a foreign layout: the scan
	// must classify exactly 900 and count 100 unrecognized, with no error.
	rpc := &fakeRPC{}
	for i := 0; i < 1000; i++ {
		var data []byte
		if i%10 == 9 {
			data = make([]byte, 40)
			for j := range data {
				data[j] = byte(0xE0 + j%8)
			}
		} else {
			data = layout.EncodePost(&models.Post{
				ID: uint64(i), Author: key(byte(i % 7)), Content: "post", Timestamp: 1,
			})
		}
		rpc.accounts = append(rpc.accounts, ledger.Account{Address: addrN(i), Data: data})
	}

	s := New(rpc, fastCfg())
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Scanned != 1000 {
		t.Fatalf("scanned: %d", res.Scanned)
	}
	if len(res.Items) != 900 {
		t.Fatalf("classified: got %d want 900", len(res.Items))
	}
	if res.Unrecognized != 100 {
		t.Fatalf("unrecognized: got %d want 100", res.Unrecognized)
	}
}

func addrN(i int) string {
	return "acct-" + string(rune('A'+i/26%26)) + string(rune('A'+i%26))
}

func TestScanRetriesRateLimitThenResets(t *testing.T) {
	rpc := &fakeRPC{scanFailures: 2}
	rpc.accounts = []ledger.Account{
		{Address: "a1", Data: layout.EncodeCommunity(&models.Community{ID: 1, Name: "Test", Creator: key(1), MemberCount: 1})},
	}
	s := New(rpc, fastCfg())
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan after rate limits: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("items: %d", len(res.Items))
	}
	if rpc.scanCalls != 3 {
		t.Fatalf("expected 3 scan calls, got %d", rpc.scanCalls)
	}
	// back-off resets to base after the clean call
	if s.Delay() != time.Millisecond {
		t.Fatalf("delay not reset: %v", s.Delay())
	}
}

func TestScanGivesUpAfterBoundedRetries(t *testing.T) {
	rpc := &fakeRPC{scanFailures: 99}
	s := New(rpc, fastCfg())
	if _, err := s.Scan(context.Background()); err != ledger.ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if rpc.scanCalls != 3 {
		t.Fatalf("expected 3 bounded attempts, got %d", rpc.scanCalls)
	}
}

func TestBackoffDoublesToCeiling(t *testing.T) {
	s := New(&fakeRPC{}, fastCfg())
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if err := s.backoff(ctx); err != nil {
			t.Fatalf("backoff: %v", err)
		}
	}
	if s.Delay() != 8*time.Millisecond {
		t.Fatalf("delay: got %v want ceiling 8ms", s.Delay())
	}
}

func TestResolveAuthorsFromScanIndex(t *testing.T) {
	author := key(3)
	rpc := &fakeRPC{}
	rpc.accounts = []ledger.Account{
		{Address: "prof", Data: layout.EncodeProfile(&models.Profile{Owner: author, Username: "ann", CreditRating: 100})},
		{Address: "post", Data: layout.EncodePost(&models.Post{ID: 1, Author: author, Content: "hi", Timestamp: 1})},
	}
	s := New(rpc, fastCfg())
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var post *models.Post
	for _, it := range res.Items {
		if p, ok := it.Entity.(*models.Post); ok {
			post = p
		}
	}
	if post == nil || post.AuthorProfile == nil || post.AuthorProfile.Username != "ann" {
		t.Fatalf("author not resolved from in-scan profiles: %+v", post)
	}
	if rpc.infoCalls != 0 {
		t.Fatalf("no secondary lookups expected, got %d", rpc.infoCalls)
	}
}

func TestResolveAuthorsSecondaryLookupDegradesToNil(t *testing.T) {
	known := key(4)
	unknown := key(5)
	rpc := &fakeRPC{infoByAddr: map[string][]byte{
		"prof-known": layout.EncodeProfile(&models.Profile{Owner: known, Username: "bob", CreditRating: 100}),
	}}
	rpc.accounts = []ledger.Account{
		{Address: "p1", Data: layout.EncodePost(&models.Post{ID: 1, Author: known, Content: "a", Timestamp: 1})},
		{Address: "p2", Data: layout.EncodePost(&models.Post{ID: 2, Author: unknown, Content: "b", Timestamp: 1})},
	}
	cfg := fastCfg()
	cfg.ProfileAddr = func(a models.Key) (string, bool) {
		if a == known {
			return "prof-known", true
		}
		return "prof-missing", true
	}
	s := New(rpc, cfg)
	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, it := range res.Items {
		p := it.Entity.(*models.Post)
		switch p.ID {
		case 1:
			if p.AuthorProfile == nil || p.AuthorProfile.Username != "bob" {
				t.Fatalf("post 1: author not resolved via lookup")
			}
		case 2:
			if p.AuthorProfile != nil {
				t.Fatalf("post 2: expected nil association for missing profile")
			}
		}
	}
}
