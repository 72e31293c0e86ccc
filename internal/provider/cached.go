package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThomasAyr/carte-scolaire/internal/cache"
	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
)

// CachedDirectory memoizes successful, non-empty lookups of another Directory.
type CachedDirectory struct {
	next  Directory
	store cache.Store
	ttl   time.Duration
}

var _ Directory = (*CachedDirectory)(nil)

func NewCachedDirectory(next Directory, store cache.Store, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, store: store, ttl: ttl}
}

func (c *CachedDirectory) Name() string { return c.next.Name() + "+" + c.store.Name() }

func (c *CachedDirectory) HealthCheck(ctx context.Context) error { return c.next.HealthCheck(ctx) }

func (c *CachedDirectory) Lookup(ctx context.Context, establishmentID string) ([]Establishment, error) {
	key := "dir:" + establishmentID
	if b, ok, err := c.store.Get(ctx, key); err != nil {
		LogError(c.Name(), "cache get", err)
	} else if ok {
		var recs []Establishment
		if err := json.Unmarshal(b, &recs); err == nil {
			metrics.CacheHitsTotal.WithLabelValues(c.store.Name()).Inc()
			return recs, nil
		}
	}
	metrics.CacheMissesTotal.WithLabelValues(c.store.Name()).Inc()

	recs, err := c.next.Lookup(ctx, establishmentID)
	if err != nil || len(recs) == 0 {
		return recs, err
	}
	if b, err := json.Marshal(recs); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			LogError(c.Name(), "cache set", err)
		}
	}
	return recs, nil
}
