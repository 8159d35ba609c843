package registry

import (
	"context"
	"log/slog"
)

// Resolver answers from the cache when it can and sends the rest to the pool
type Resolver struct {
	pool  *Pool
	cache *Cache
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(pool *Pool, cache *Cache) *Resolver {
	return &Resolver{pool: pool, cache: cache}
}

// Resolve returns a result for every distinct non-empty number. Statuses read
// from a well-formed response are written back to the cache.
func (r *Resolver) Resolve(ctx context.Context, numbers []string) (map[string]Result, error) {
	if r.cache == nil {
		return r.pool.Resolve(ctx, numbers)
	}

	hits := make(map[string]Result)
	var misses []string
	for _, n := range distinct(numbers) {
		status, ok, err := r.cache.Get(n)
		if err != nil {
			slog.Warn("Reading status cache", "number", n, "error", err)
		}
		if ok {
			hits[n] = Result{Number: n, Status: status}
			continue
		}
		misses = append(misses, n)
	}
	slog.Debug("Status cache", "hits", len(hits), "misses", len(misses))

	fetched, err := r.pool.Resolve(ctx, misses)
	for n, res := range fetched {
		if res.Err == nil {
			if putErr := r.cache.Put(n, res.Status); putErr != nil {
				slog.Warn("Writing status cache", "number", n, "error", putErr)
			}
		}
		hits[n] = res
	}
	return hits, err
}
