// Package options caches the id/name lists that feed form dropdowns.
package options

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/admin-console/internal/model"
)

const (
	DefaultTTL      = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
	key             = "options"
)

// Loader fetches the full option list from the backend.
type Loader func(ctx context.Context) ([]model.Option, error)

type Cache struct {
	cache *cache.Cache
	load  Loader
}

func New(ttl time.Duration, load Loader) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		cache: cache.New(ttl, cleanupInterval),
		load:  load,
	}
}

// Get returns the cached list, loading it on a miss. Failed loads are not
// cached.
func (c *Cache) Get(ctx context.Context) ([]model.Option, error) {
	if cached, found := c.cache.Get(key); found {
		return copyOptions(cached.([]model.Option)), nil
	}

	opts, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, copyOptions(opts), cache.DefaultExpiration)
	return opts, nil
}

// Invalidate drops the cached list so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.cache.Delete(key)
}

func copyOptions(opts []model.Option) []model.Option {
	out := make([]model.Option, len(opts))
	copy(out, opts)
	return out
}
