package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokenroute/internal/graph"
)

// RouteCache is a specialized cache for solved routes, keyed on the
// graph contents plus the query parameters.
type RouteCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRoute is the JSON-serializable form of a RouteResult plus the
// timestamp it was computed at.
type CachedRoute struct {
	Path        []string          `json:"path"`
	Steps       []CachedRouteStep `json:"steps"`
	TotalWeight float64           `json:"total_weight"`
	ComputedAt  time.Time         `json:"computed_at"`
}

// CachedRouteStep mirrors graph.RouteStep in a JSON-friendly shape.
type CachedRouteStep struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Kind string  `json:"kind"`
	Rate float64 `json:"rate"`
	Gas  float64 `json:"gas"`
}

// NewRouteCache creates a cache for solved routes.
func NewRouteCache(cache Cache, defaultTTL time.Duration) *RouteCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RouteCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get fetches a cached route for the given query.
func (rc *RouteCache) Get(ctx context.Context, g graph.RouteGraph, source, target graph.TokenKey, algorithm string, maxHops int) (*CachedRoute, bool, error) {
	key := rc.key(g, source, target, algorithm, maxHops)

	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedRoute
	if err := json.Unmarshal(data, &result); err != nil {
		_ = rc.cache.Delete(ctx, key)
		return nil, false, nil
	}

	return &result, true, nil
}

// Set stores a route result for the given query.
func (rc *RouteCache) Set(ctx context.Context, g graph.RouteGraph, source, target graph.TokenKey, algorithm string, maxHops int, result *graph.RouteResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	cached := toCachedRoute(result)

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return rc.cache.Set(ctx, rc.key(g, source, target, algorithm, maxHops), data, ttl)
}

// Invalidate removes every cached route computed over the given graph.
func (rc *RouteCache) Invalidate(ctx context.Context, g graph.RouteGraph) (int64, error) {
	pattern := fmt.Sprintf("solve:*:%s:*", GraphHash(g))
	return rc.cache.DeleteByPattern(ctx, pattern)
}

// InvalidateAll removes every cached route regardless of graph.
func (rc *RouteCache) InvalidateAll(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, "solve:*")
}

func (rc *RouteCache) key(g graph.RouteGraph, source, target graph.TokenKey, algorithm string, maxHops int) string {
	return BuildSolveKey(GraphHash(g), source.String(), target.String(), algorithm, maxHops)
}

func toCachedRoute(r *graph.RouteResult) *CachedRoute {
	c := &CachedRoute{
		TotalWeight: r.TotalWeight,
		ComputedAt:  time.Now(),
	}
	for _, v := range r.Path {
		c.Path = append(c.Path, v.String())
	}
	for _, s := range r.Steps {
		c.Steps = append(c.Steps, CachedRouteStep{
			From: s.From.String(),
			To:   s.To.String(),
			Kind: s.Kind.String(),
			Rate: s.Rate,
			Gas:  s.Gas,
		})
	}
	return c
}
