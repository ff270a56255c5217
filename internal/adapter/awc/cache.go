package awc

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// CachedResolver wraps a StationResolver with an in-memory LRU cache keyed by
// station id.
type CachedResolver struct {
	inner   domain.StationResolver
	cache   *lru.Cache[string, domain.Station]
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver. Sizes below
// one are raised to one.
func NewCachedResolver(inner domain.StationResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, domain.Station](max(1, maxEntries))
	return &CachedResolver{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachedResolver) ResolveStation(ctx context.Context, id string) (domain.Station, error) {
	if st, ok := c.cache.Get(id); ok {
		c.metrics.StationLookupCache.WithLabelValues("hit").Inc()
		return st, nil
	}
	c.metrics.StationLookupCache.WithLabelValues("miss").Inc()

	st, err := c.inner.ResolveStation(ctx, id)
	if err != nil {
		return st, err
	}
	// Only cache found stations so a newly commissioned id is picked up on retry.
	if st.ID != "" {
		c.cache.Add(id, st)
	}
	return st, nil
}
