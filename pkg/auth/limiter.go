package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// Fallback limits when the config leaves rate limiting unset. Generous
// enough for a single frontend, tight enough that an unkeyed scraper cannot
// drive RPC scans for free.
const (
	defaultRPS   = 5
	defaultBurst = 10
)

// keyLimiters hands out one token bucket per caller identity. Keyed by API
// key when the request carries one, by client IP otherwise, so anonymous
// callers share per-address budgets instead of one global bucket.
type keyLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	cfg     SecConfig
}

func newKeyLimiters(cfg SecConfig) *keyLimiters {
	return &keyLimiters{buckets: make(map[string]*rate.Limiter), cfg: cfg}
}

func (p *keyLimiters) limiter(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.buckets[key]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.buckets[key] = l
	return l
}

// Allow reports whether the identity has budget for one more request.
func (p *keyLimiters) Allow(key string) bool {
	return p.limiter(key).Allow()
}
