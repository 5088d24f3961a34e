// Package fetch runs the bulk program-account scan: page through every
// account the program owns, classify each buffer, and resolve secondary
// associations (post author profiles) without tripping the node's rate
// limits. Partial results always beat no results: a bad account is counted
// and skipped, a failed secondary lookup degrades to a nil association, and
// only a failure of the primary scan itself aborts.
package fetch

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"blocksd/pkg/classify"
	"blocksd/pkg/layout"
	"blocksd/pkg/ledger"
	"blocksd/pkg/logger"
	"blocksd/pkg/models"
	"blocksd/pkg/telemetry"
)

// RPC is the slice of the ledger client the scanner needs.
type RPC interface {
	GetProgramAccounts(ctx context.Context, program string) ([]ledger.Account, error)
	GetAccountInfo(ctx context.Context, addr string) (*ledger.Account, error)
}

// ProfileAddrFunc maps an author wallet key to its profile account address.
// Address derivation is program-specific (seeded hashing owned by the write
// side), so the mapping is injected rather than computed here. A nil func
// disables secondary lookups beyond the in-scan index.
type ProfileAddrFunc func(author models.Key) (string, bool)

// Config tunes a Scanner.
type Config struct {
	Program     string
	BatchSize   int             // accounts classified per batch
	BaseDelay   time.Duration   // pacing between secondary lookups
	MaxDelay    time.Duration   // back-off ceiling after rate limits
	Retries     int             // attempts per rate-limited call
	ProfileAddr ProfileAddrFunc // author key -> profile address
}

func (c *Config) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 50 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
}

// Item is one classified account from a scan.
type Item struct {
	Address string
	Kind    layout.Kind
	Entity  any
}

// Result carries the classified items and scan statistics.
type Result struct {
	Items        []Item
	Scanned      int
	Unrecognized int
}

// Scanner performs restartable full scans. Overlapping scans are safe: both
// complete, and whoever consumes the items applies them last-write-wins.
type Scanner struct {
	rpc     RPC
	cfg     Config
	limiter *rate.Limiter

	// delay is the current inter-item pacing, doubled per observed rate
	// limit up to cfg.MaxDelay and reset to cfg.BaseDelay after a clean
	// call. Only touched from inside a single Scan pass.
	delay time.Duration
}

// New returns a scanner over the configured program.
func New(rpc RPC, cfg Config) *Scanner {
	cfg.defaults()
	return &Scanner{
		rpc:     rpc,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.BaseDelay), 1),
		delay:   cfg.BaseDelay,
	}
}

// Scan fetches and classifies every program account, then resolves post
// authors. The returned order matches the node's.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() { telemetry.ScanDuration.Observe(time.Since(start).Seconds()) }()

	accounts, err := s.scanWithBackoff(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Scanned: len(accounts)}
	telemetry.AccountsScanned.Add(float64(len(accounts)))

	profilesByOwner := make(map[models.Key]*models.Profile)
	now := time.Now()

	for i := 0; i < len(accounts); i += s.cfg.BatchSize {
		end := i + s.cfg.BatchSize
		if end > len(accounts) {
			end = len(accounts)
		}
		for _, acc := range accounts[i:end] {
			r, ok := classify.Classify(acc.Data)
			if !ok {
				res.Unrecognized++
				telemetry.AccountsUnrecognized.Inc()
				continue
			}
			if p, isProfile := r.Entity.(*models.Profile); isProfile {
				profilesByOwner[p.Owner] = p
			}
			if p, isPost := r.Entity.(*models.Post); isPost {
				p.Derive(now)
			}
			telemetry.AccountsClassified.WithLabelValues(string(r.Kind)).Inc()
			res.Items = append(res.Items, Item{Address: acc.Address, Kind: r.Kind, Entity: r.Entity})
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}

	s.resolveAuthors(ctx, res.Items, profilesByOwner)

	logger.Info("scan_complete",
		"program", s.cfg.Program,
		"scanned", res.Scanned,
		"classified", len(res.Items),
		"unrecognized", res.Unrecognized,
		"took", time.Since(start).String())
	return res, nil
}

// ScanFunc streams classified items to fn in node order. fn returning an
// error stops the stream and surfaces that error.
func (s *Scanner) ScanFunc(ctx context.Context, fn func(Item) error) error {
	res, err := s.Scan(ctx)
	if err != nil {
		return err
	}
	for _, it := range res.Items {
		if err := fn(it); err != nil {
			return err
		}
	}
	return nil
}

// scanWithBackoff calls getProgramAccounts, retrying rate limits with the
// doubling delay.
func (s *Scanner) scanWithBackoff(ctx context.Context) ([]ledger.Account, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.Retries; attempt++ {
		accounts, err := s.rpc.GetProgramAccounts(ctx, s.cfg.Program)
		if err == nil {
			s.resetDelay()
			return accounts, nil
		}
		lastErr = err
		if !errors.Is(err, ledger.ErrRateLimited) {
			return nil, err
		}
		telemetry.RateLimitHits.Inc()
		if werr := s.backoff(ctx); werr != nil {
			return nil, werr
		}
	}
	return nil, lastErr
}

// resolveAuthors attaches each post's author profile. Profiles already seen
// in the scan win; otherwise a paced point lookup runs, and after bounded
// retries the association degrades to nil rather than failing the scan.
func (s *Scanner) resolveAuthors(ctx context.Context, items []Item, byOwner map[models.Key]*models.Profile) {
	for _, it := range items {
		post, ok := it.Entity.(*models.Post)
		if !ok {
			continue
		}
		if p := byOwner[post.Author]; p != nil {
			post.AuthorProfile = p
			continue
		}
		if s.cfg.ProfileAddr == nil {
			continue
		}
		addr, ok := s.cfg.ProfileAddr(post.Author)
		if !ok {
			continue
		}
		p, err := s.lookupProfile(ctx, addr)
		if err != nil {
			// author profile unknown; the post still ships
			logger.Debug("author_profile_unresolved", "post", post.ID, "author", post.Author.String(), "err", err)
			continue
		}
		byOwner[post.Author] = p
		post.AuthorProfile = p
	}
}

// lookupProfile is one paced secondary fetch with rate-limit back-off.
func (s *Scanner) lookupProfile(ctx context.Context, addr string) (*models.Profile, error) {
	for attempt := 0; attempt < s.cfg.Retries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		acc, err := s.rpc.GetAccountInfo(ctx, addr)
		if err == nil {
			s.resetDelay()
			return layout.DecodeProfile(acc.Data)
		}
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, err
		}
		if !errors.Is(err, ledger.ErrRateLimited) {
			return nil, err
		}
		telemetry.RateLimitHits.Inc()
		if werr := s.backoff(ctx); werr != nil {
			return nil, werr
		}
	}
	return nil, ledger.ErrRateLimited
}

// backoff sleeps the current delay and doubles it up to the ceiling.
func (s *Scanner) backoff(ctx context.Context) error {
	d := s.delay
	s.delay *= 2
	if s.delay > s.cfg.MaxDelay {
		s.delay = s.cfg.MaxDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (s *Scanner) resetDelay() {
	s.delay = s.cfg.BaseDelay
}

// Delay exposes the current back-off delay for tests and diagnostics.
func (s *Scanner) Delay() time.Duration {
	return s.delay
}
