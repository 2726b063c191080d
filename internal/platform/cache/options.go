package cache

import (
	"time"

	"flathunt/internal/platform/logger"
)

// Option mutates Cache during New
type Option func(*Cache)

// WithLogger sets the logger used for durable-tier warnings
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}
