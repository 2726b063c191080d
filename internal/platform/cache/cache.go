// Package cache provides the two-tier response cache used by listing
// fetches: a fast in-memory table in front of an optional durable file
// mirror. Reads are memory-first with durable promotion; writes go to
// both tiers. Expired in-memory entries are kept around so callers can
// fall back to stale data when a live fetch fails
package cache

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"flathunt/internal/platform/logger"
)

// Entry is one cached response body with its freshness window
type Entry struct {
	Key      string        `json:"key"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
	Body     []byte        `json:"body"`
}

// Valid reports whether the entry is still fresh at now
func (e Entry) Valid(now time.Time) bool { return now.Sub(e.StoredAt) < e.TTL }

// Cache is the two-tier store. Construct with New; the zero value has no
// memory table and will panic
type Cache struct {
	mu  sync.Mutex
	mem map[string]Entry

	dir        string // "" disables the durable tier
	ttl        time.Duration
	maxEntries int

	log logger.Logger
	now func() time.Time

	lastCleanupUnix atomic.Int64
}

// New builds a cache from cfg. When cfg.Dir is set the durable tier lives
// under <dir>/cache/, a namespace kept apart from the filter persistence
// file so clearing cached responses never touches saved filters
func New(cfg Config, opts ...Option) (*Cache, error) {
	c := &Cache{
		mem:        make(map[string]Entry, 32),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		log:        *logger.Named("cache"),
		now:        time.Now,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	for _, o := range opts {
		o(c)
	}
	if cfg.Dir != "" {
		dir, err := ensureNamespace(cfg.Dir)
		if err != nil {
			return nil, err
		}
		c.dir = dir
	}
	return c, nil
}

// RequestKey derives the deterministic cache key for a request: the
// endpoint path plus the canonical (sorted) query encoding. Equal
// parameter sets always produce equal keys regardless of insertion order
func RequestKey(endpoint string, params url.Values) string {
	enc := params.Encode()
	if enc == "" {
		return endpoint
	}
	return endpoint + "?" + enc
}

// Get returns the body for key if a fresh entry exists in either tier.
// Memory wins; a fresh durable hit is promoted into memory, an expired
// durable hit is deleted on read. Expired memory entries are left in
// place for GetStale
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.mem[key]; ok && e.Valid(now) {
		body := append([]byte(nil), e.Body...)
		c.mu.Unlock()
		return body, true
	}
	c.mu.Unlock()

	if c.dir == "" || ctx.Err() != nil {
		return nil, false
	}

	e, err := readEntry(entryPath(c.dir, key))
	if err != nil {
		return nil, false
	}
	if e.Key != key {
		// hash collision or foreign file; treat as a miss
		return nil, false
	}
	if !e.Valid(now) {
		c.removeDurable(key)
		return nil, false
	}

	c.mu.Lock()
	c.mem[key] = e
	c.evictLocked()
	c.mu.Unlock()

	return append([]byte(nil), e.Body...), true
}

// GetStale returns the in-memory body for key regardless of freshness.
// This is the stale-on-error fallback: availability over freshness when
// the live fetch fails. Memory tier only
func (c *Cache) GetStale(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mem[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), e.Body...), true
}

// Put stores body under key in memory and, when enabled, the durable
// tier. Durable failures are logged and swallowed; the memory write
// always succeeds
func (c *Cache) Put(ctx context.Context, key string, body []byte) {
	e := Entry{
		Key:      key,
		StoredAt: c.now(),
		TTL:      c.ttl,
		Body:     append([]byte(nil), body...),
	}

	c.mu.Lock()
	c.mem[key] = e
	c.evictLocked()
	c.mu.Unlock()

	if c.dir == "" || ctx.Err() != nil {
		return
	}
	if err := writeEntry(c.dir, e); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("durable cache write failed")
	}
	c.maybeCleanup()
}

// Invalidate drops every entry whose key contains substr, from both
// tiers. Returns the number of in-memory entries removed
func (c *Cache) Invalidate(substr string) int {
	c.mu.Lock()
	n := 0
	for k := range c.mem {
		if substr == "" || strings.Contains(k, substr) {
			delete(c.mem, k)
			n++
		}
	}
	c.mu.Unlock()

	if c.dir != "" {
		c.invalidateDurable(substr)
	}
	return n
}

// Clear drops both tiers entirely. The durable namespace directory is
// kept, its entry files removed
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.mem = make(map[string]Entry, 32)
	c.mu.Unlock()

	if c.dir == "" || ctx.Err() != nil {
		return ctx.Err()
	}
	return removeAllEntries(c.dir)
}

// Len reports the number of in-memory entries, fresh or stale
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

// TTL returns the freshness window applied to new entries
func (c *Cache) TTL() time.Duration { return c.ttl }

// evictLocked enforces the memory cap by dropping oldest entries first.
// Caller holds mu
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.mem) > c.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for k, e := range c.mem {
			if oldestKey == "" || e.StoredAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.StoredAt
			}
		}
		delete(c.mem, oldestKey)
	}
}
