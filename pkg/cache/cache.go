// Package cache is the in-memory read-through cache of decoded entities,
// keyed by ledger address. Concurrent misses for one address collapse into a
// single point lookup; overlapping refreshes are allowed and resolve
// last-write-wins, which is safe because entities are immutable or monotonic
// in practice. Invalidation is manual, on confirmed writes.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"blocksd/pkg/layout"
	"blocksd/pkg/models"
	"blocksd/pkg/telemetry"
)

// Entry is one cached classified entity.
type Entry struct {
	Kind   layout.Kind
	Entity any
}

// FetchFunc resolves a single address to a classified entity. It returns
// ledger.ErrNotFound when the address has no account.
type FetchFunc func(ctx context.Context, addr string) (Entry, error)

// Cache is constructed once at startup and passed by reference to all
// readers; there is no implicit singleton.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	fetch   FetchFunc
	group   singleflight.Group
}

// New returns an empty cache backed by the given point-lookup function.
func New(fetch FetchFunc) *Cache {
	return &Cache{entries: make(map[string]Entry), fetch: fetch}
}

// Get returns the cached entry for addr, fetching on miss. Errors are not
// cached; the next Get retries.
func (c *Cache) Get(ctx context.Context, addr string) (Entry, error) {
	c.mu.RLock()
	e, ok := c.entries[addr]
	c.mu.RUnlock()
	if ok {
		telemetry.CacheHits.Inc()
		return e, nil
	}
	telemetry.CacheMisses.Inc()

	v, err, _ := c.group.Do(addr, func() (any, error) {
		got, err := c.fetch(ctx, addr)
		if err != nil {
			return Entry{}, err
		}
		c.Put(addr, got)
		return got, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// Put stores an entry, replacing any previous one (last write wins).
func (c *Cache) Put(addr string, e Entry) {
	c.mu.Lock()
	c.entries[addr] = e
	c.mu.Unlock()
}

// Invalidate drops the entry for addr so the next read refetches.
func (c *Cache) Invalidate(addr string) {
	c.mu.Lock()
	delete(c.entries, addr)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Posts returns all cached posts with their addresses.
func (c *Cache) Posts() map[string]*models.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.Post)
	for addr, e := range c.entries {
		if p, ok := e.Entity.(*models.Post); ok {
			out[addr] = p
		}
	}
	return out
}

// Profiles returns all cached profiles with their addresses.
func (c *Cache) Profiles() map[string]*models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.Profile)
	for addr, e := range c.entries {
		if p, ok := e.Entity.(*models.Profile); ok {
			out[addr] = p
		}
	}
	return out
}

// Comments returns all cached comments with their addresses.
func (c *Cache) Comments() map[string]*models.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.Comment)
	for addr, e := range c.entries {
		if cm, ok := e.Entity.(*models.Comment); ok {
			out[addr] = cm
		}
	}
	return out
}

// Communities returns all cached communities with their addresses.
func (c *Cache) Communities() map[string]*models.Community {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.Community)
	for addr, e := range c.entries {
		if cm, ok := e.Entity.(*models.Community); ok {
			out[addr] = cm
		}
	}
	return out
}

// CommunityCountByCreator counts cached communities per creator key. The
// program enforces the per-creator cap on the write path; this read-side
// count lets the gateway refuse an over-cap create before submission.
func (c *Cache) CommunityCountByCreator(creator models.Key) int {
	n := 0
	for _, cm := range c.Communities() {
		if cm.Creator == creator {
			n++
		}
	}
	return n
}
