package cache

import (
	"time"

	"flathunt/internal/platform/config"
)

// DefaultTTL is the freshness window applied when none is configured
const DefaultTTL = 5 * time.Minute

// Config controls the cache tiers
type Config struct {
	// TTL is the freshness window for new entries
	TTL time.Duration

	// Dir is the state root; the durable tier lives under <Dir>/cache/.
	// Empty disables the durable tier entirely
	Dir string

	// MaxEntries caps the in-memory table; oldest entries evict first.
	// Zero or negative means unbounded
	MaxEntries int
}

// FromConfig reads CACHE_* environment keys
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("CACHE_")
	return Config{
		TTL:        c.MayDuration("TTL", DefaultTTL),
		Dir:        c.MayString("DIR", ""),
		MaxEntries: c.MayInt("MAX_ENTRIES", 256),
	}
}
