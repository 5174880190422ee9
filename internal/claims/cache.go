package claims

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const listCacheKey = "claims:list"

// CachedRepository memoizes reads from a slower Repository. Cached values are
// cloned on the way out so callers can mutate what they receive.
type CachedRepository struct {
	next  Repository
	cache *gocache.Cache
}

var _ Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps next with a TTL cache. A non-positive ttl keeps
// entries until the process exits.
func NewCachedRepository(next Repository, ttl, cleanupInterval time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CachedRepository{
		next:  next,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// List returns the cached claim list, loading it on first use.
func (r *CachedRepository) List(ctx context.Context) ([]Claim, error) {
	if val, found := r.cache.Get(listCacheKey); found {
		return cloneAll(val.([]Claim)), nil
	}
	items, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(listCacheKey, cloneAll(items))
	return items, nil
}

// GetByID returns a cached claim. Misses are not cached.
func (r *CachedRepository) GetByID(ctx context.Context, id string) (Claim, error) {
	key := "claims:id:" + id
	if val, found := r.cache.Get(key); found {
		return val.(Claim).Clone(), nil
	}
	claim, err := r.next.GetByID(ctx, id)
	if err != nil {
		return Claim{}, err
	}
	r.cache.SetDefault(key, claim.Clone())
	return claim, nil
}

// Flush drops every cached entry.
func (r *CachedRepository) Flush() {
	r.cache.Flush()
}

func cloneAll(items []Claim) []Claim {
	out := make([]Claim, len(items))
	for i, claim := range items {
		out[i] = claim.Clone()
	}
	return out
}
