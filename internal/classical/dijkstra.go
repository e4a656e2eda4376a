// Package classical implements the hop-capped Dijkstra solver: a plain
// shortest-path search over the additive edge weight, refusing to extend
// any path past a caller-supplied maximum number of hops. It pairs an
// indexed decrease-key heap with a settled-vertex set, and threads a hop
// counter alongside distance. Edge weights are not non-negative: any rate
// above 1 gives a negative weight, and only non-positive rates are clamped
// (to MAX_FINITE/2).
package classical

import (
	"time"

	"tokenroute/internal/graph"
	"tokenroute/internal/pqueue"
	"tokenroute/pkg/apperror"
)

// DefaultMaxHops is the hop cap used when a caller does not specify one.
const DefaultMaxHops = 4

// Metrics reports the work the solver performed for one query, the
// classical-solver half of the per-algorithm observability both solvers
// in this module expose.
type Metrics struct {
	ExecutionTimeMs float64
	GasEstimate     float64
	VisitedNodes    int
	PathLength      int
	HeapOperations  uint64
}

// Solve runs hop-capped Dijkstra from source to target over g. maxHops <= 0
// is treated as DefaultMaxHops. A trivial source == target query returns a
// single-vertex route with zero weight without touching the heap.
func Solve(g graph.RouteGraph, source, target graph.TokenKey, maxHops int) (*graph.RouteResult, *Metrics, error) {
	start := time.Now()
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	if err := graph.ValidateQuery(g, source, target, maxHops); err != nil {
		return nil, nil, err
	}

	if source == target {
		return &graph.RouteResult{Path: []graph.TokenKey{source}}, &Metrics{
			ExecutionTimeMs: elapsedMs(start), PathLength: 1,
		}, nil
	}

	c := graph.Compile(g)
	n := c.N()
	srcIdx, tgtIdx := c.Index[source], c.Index[target]

	pool := graph.GetScratchPool()
	dist := pool.Floats(n, graph.Infinity)
	hops := pool.Ints(n, -1)
	prev := pool.Ints(n, -1)
	settled := pool.Bools(n)
	defer pool.ReleaseFloats(dist)
	defer pool.ReleaseInts(hops)
	defer pool.ReleaseInts(prev)
	defer pool.ReleaseBools(settled)

	dist[srcIdx] = 0
	hops[srcIdx] = 0

	h := pqueue.New(n)
	h.Insert(srcIdx, 0)

	visited := 0
	for !h.IsEmpty() {
		u, du, _ := h.ExtractMin()
		if settled[u] {
			continue
		}
		settled[u] = true
		visited++

		if u == tgtIdx {
			break
		}
		if hops[u] >= maxHops {
			continue
		}

		for _, e := range c.Adj[u] {
			if settled[e.To] {
				continue
			}
			nd := du + e.W
			if nd < dist[e.To] {
				dist[e.To] = nd
				prev[e.To] = u
				hops[e.To] = hops[u] + 1
				h.DecreaseKey(e.To, nd)
			}
		}
	}

	result, ok := graph.ReconstructPath(g, c, dist, prev, srcIdx, tgtIdx)
	metrics := &Metrics{
		ExecutionTimeMs: elapsedMs(start),
		VisitedNodes:    visited,
		HeapOperations:  h.Operations(),
	}
	if !ok {
		return nil, metrics, apperror.NoRouteFound(source, target)
	}
	metrics.PathLength = len(result.Path)
	for _, step := range result.Steps {
		metrics.GasEstimate += step.Gas
	}
	return result, metrics, nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
