package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/ebcharge/internal/core/domain"
	"github.com/samirrijal/ebcharge/internal/core/ports"
	"github.com/samirrijal/ebcharge/internal/pkg/metrics"
)

// CatalogCacheKey holds the cached terminal catalog snapshot.
const CatalogCacheKey = "terminals:catalog"

// CachedCatalog is a read-through cache in front of a TerminalCatalog.
// Only successful reads are cached. Catalog errors are returned as is.
type CachedCatalog struct {
	next       ports.TerminalCatalog
	cache      ports.CacheService
	ttlSeconds int
}

// NewCachedCatalog creates a new CachedCatalog. A nil cache or a
// non-positive TTL disables caching.
func NewCachedCatalog(next ports.TerminalCatalog, cache ports.CacheService, ttlSeconds int) *CachedCatalog {
	if ttlSeconds <= 0 {
		cache = nil
	}
	return &CachedCatalog{next: next, cache: cache, ttlSeconds: ttlSeconds}
}

// AllTerminals returns the catalog, from cache when fresh.
func (c *CachedCatalog) AllTerminals(ctx context.Context) ([]domain.Terminal, error) {
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, CatalogCacheKey); err == nil {
			var terminals []domain.Terminal
			if err := json.Unmarshal(data, &terminals); err == nil {
				metrics.CacheHits.WithLabelValues("catalog").Inc()
				return terminals, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("catalog").Inc()
	}

	terminals, err := c.next.AllTerminals(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if data, err := json.Marshal(terminals); err == nil {
			_ = c.cache.Set(ctx, CatalogCacheKey, data, c.ttlSeconds)
		}
	}

	return terminals, nil
}

// TerminalsWithin filters the cached catalog by box.
func (c *CachedCatalog) TerminalsWithin(ctx context.Context, box domain.Bounds) ([]domain.Terminal, error) {
	terminals, err := c.AllTerminals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Terminal, 0, len(terminals))
	for _, t := range terminals {
		if box.Contains(t.Location) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Invalidate drops the cached snapshot.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, CatalogCacheKey)
}
