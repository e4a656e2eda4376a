// Package psb implements the Post-Sorting-Barrier Dijkstra solver: the
// bounded multi-source shortest-path (BMSSP) recursion of Duan et al.,
// built around a FindPivots subroutine that shrinks the working frontier
// before each recursive step. The solver is organized as a per-call struct
// carrying Dist/Prev state over a compiled, compact-integer graph, the same
// shape the classical solver in this module uses.
package psb

import (
	"math"
	"time"

	"tokenroute/internal/graph"
	"tokenroute/pkg/apperror"
)

// Metrics reports PSB-specific work alongside the common execution-time and
// visited-count figures the solver shares with the classical one.
type Metrics struct {
	ExecutionTimeMs    float64
	VisitedNodes       int
	PathLength         int
	BarrierCount       int
	PivotsFound        int
	FrontierReductions int
	LevelCount         int
}

type solver struct {
	c         *graph.Compiled
	dist      []float64
	prev      []int
	edgeW     []float64
	completed []bool
	k, t      int
	target    int
	m         Metrics
}

// Solve runs the PSB/BMSSP algorithm from source to target over g. maxHops
// is accepted for interface symmetry with classical.Solve but is not
// enforced here: BMSSP's recursion has no natural hop-count parameter, so
// rather than post-filter paths after the fact this solver documents the
// discrepancy and matches the source algorithm's own unbounded-hop
// behavior. PSB may therefore return a path longer than maxHops; callers
// that need a hard hop bound should use classical.Solve, or compare both
// via a SolveBoth-style diagnostic.
func Solve(g graph.RouteGraph, source, target graph.TokenKey, maxHops int) (*graph.RouteResult, *Metrics, error) {
	start := time.Now()
	_ = maxHops
	if err := graph.ValidateQuery(g, source, target, 0); err != nil {
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
	prev := pool.Ints(n, -1)
	edgeW := pool.Floats(n, 0)
	completed := pool.Bools(n)
	defer pool.ReleaseFloats(dist)
	defer pool.ReleaseInts(prev)
	defer pool.ReleaseFloats(edgeW)
	defer pool.ReleaseBools(completed)

	dist[srcIdx] = 0

	k, t, maxLevel := psbParameters(n)
	s := &solver{c: c, dist: dist, prev: prev, edgeW: edgeW, completed: completed, k: k, t: t, target: tgtIdx}

	s.bmssp(maxLevel, graph.Infinity, []int{srcIdx})

	result, ok := graph.ReconstructPath(g, c, dist, prev, srcIdx, tgtIdx)
	metrics := &Metrics{
		ExecutionTimeMs:    elapsedMs(start),
		VisitedNodes:       s.m.VisitedNodes,
		BarrierCount:       s.m.BarrierCount,
		PivotsFound:        s.m.PivotsFound,
		FrontierReductions: s.m.FrontierReductions,
		LevelCount:         s.m.LevelCount,
	}
	if !ok {
		return nil, metrics, apperror.NoRouteFound(source, target)
	}
	metrics.PathLength = len(result.Path)
	return result, metrics, nil
}

// psbParameters computes k (Bellman-Ford depth), t (branching exponent),
// and maxLevel (recursion depth) from the vertex count.
func psbParameters(n int) (k, t, maxLevel int) {
	nf := float64(n)
	if nf < 2 {
		nf = 2
	}
	log2n := math.Log2(nf)

	k = int(math.Floor(math.Cbrt(log2n)))
	if k < 2 {
		k = 2
	}
	t = int(math.Floor(math.Pow(log2n, 2.0/3.0)))
	if t < 2 {
		t = 2
	}
	maxLevel = int(math.Ceil(log2n / float64(t)))
	if maxLevel < 0 {
		maxLevel = 0
	}
	return k, t, maxLevel
}

func (s *solver) markCompleted(v int) {
	if !s.completed[v] {
		s.completed[v] = true
		s.m.VisitedNodes++
	}
}

// findPivots runs up to k layers of bounded Bellman-Ford relaxation from S,
// collecting the reached set W and the pivot subset P whose shortest-path
// subtree within the resulting forest has size >= k.
func (s *solver) findPivots(B float64, S []int) (P []int, W []int) {
	inW := make(map[int]bool, len(S)*2)
	W = append(W, S...)
	for _, u := range S {
		inW[u] = true
	}

	bail := len(W) > s.k*len(S)
	layer := append([]int{}, S...)
	for i := 1; i <= s.k && !bail && len(layer) > 0; i++ {
		var next []int
		for _, u := range layer {
			for _, e := range s.c.Adj[u] {
				v, w := e.To, e.W
				nd := s.dist[u] + w
				if nd <= s.dist[v] && nd < B {
					s.dist[v] = nd
					s.prev[v] = u
					s.edgeW[v] = w
					if !inW[v] {
						inW[v] = true
						W = append(W, v)
						next = append(next, v)
						if len(W) > s.k*len(S) {
							bail = true
							break
						}
					}
				}
			}
			if bail {
				break
			}
		}
		layer = next
	}

	if bail {
		P = append(P, S...)
		return P, W
	}

	// Build the predecessor forest restricted to W (step 4): a v in W
	// contributes a forest edge only if its recorded predecessor is itself
	// in W and the recorded distance still matches that predecessor's
	// distance plus the relaxing edge's weight, within tolerance. A
	// self-loop predecessor can never satisfy this for a genuine relaxation
	// but is excluded explicitly to avoid a degenerate one-node cycle.
	children := make(map[int][]int, len(W))
	for _, v := range W {
		p := s.prev[v]
		if p < 0 || p == v || !inW[p] {
			continue
		}
		if math.Abs(s.dist[v]-(s.dist[p]+s.edgeW[v])) > graph.ForestTolerance {
			continue
		}
		children[p] = append(children[p], v)
	}

	memo := make(map[int]int, len(W))
	visiting := make(map[int]bool, len(W))
	var sizeOf func(v int) int
	sizeOf = func(v int) int {
		if sz, ok := memo[v]; ok {
			return sz
		}
		if visiting[v] {
			return 0
		}
		visiting[v] = true
		sz := 1
		for _, child := range children[v] {
			sz += sizeOf(child)
		}
		visiting[v] = false
		memo[v] = sz
		return sz
	}

	for _, u := range S {
		if sizeOf(u) >= s.k {
			P = append(P, u)
		}
	}
	s.m.PivotsFound += len(P)
	return P, W
}

// bmssp finalizes every vertex reachable from S with true distance < B,
// recursing over progressively smaller pivot-derived subsets. It returns
// the tightened bound B' and the set of vertices it completed.
func (s *solver) bmssp(level int, B float64, S []int) (float64, []int) {
	if level > s.m.LevelCount {
		s.m.LevelCount = level
	}
	if level == 0 || len(S) == 0 {
		return s.baseCase(B, S)
	}

	P, W := s.findPivots(B, S)
	s.m.BarrierCount++
	s.m.FrontierReductions++

	inU := make(map[int]bool, len(W))
	U := append([]int{}, W...)

	pending := append([]int{}, P...)
	inPending := make(map[int]bool, len(pending)*2)
	for _, v := range pending {
		inPending[v] = true
	}

	// Completing a vertex means its distance is final, which (per the
	// base-case pairing of completion with relaxation) only holds once its
	// own outgoing edges have been relaxed too. FindPivots's bounded layering
	// may bail before the last-reached layer gets a chance to relax its own
	// edges, so that has to happen here; any neighbor it newly improves is
	// queued for its own recursive pull below, same as a pivot would be.
	for _, v := range W {
		inU[v] = true
		if s.dist[v] < B {
			s.markCompleted(v)
			s.relaxEdges(v, &pending, inPending)
		}
	}

	Bi := B
	i := 0
	iMax := pow2Capped(s.t)
	pullSize := pow2Capped((level - 1) * s.t)
	target := s.target
	bound := s.k * pow2Capped(level*s.t)

	for len(U) < bound && len(pending) > 0 && i < iMax {
		n := pullSize
		if n > len(pending) {
			n = len(pending)
		}
		if n < 1 {
			n = 1
		}
		Si := pending[:n]
		pending = pending[n:]
		for _, v := range Si {
			inPending[v] = false
		}

		Bp, Ui := s.bmssp(level-1, Bi, Si)

		for _, u := range Ui {
			if !inU[u] {
				inU[u] = true
				U = append(U, u)
			}
			s.markCompleted(u)
			s.relaxEdges(u, &pending, inPending)
		}
		if Bp < Bi {
			Bi = Bp
		}
		i++
		if s.dist[target] < Bi {
			break
		}
	}
	return Bi, U
}

// relaxEdges relaxes u's outgoing edges on strict distance improvement. Any
// neighbor improved this way that is not yet completed gets queued into
// pending (if not already there) so a later iteration pulls it and relaxes
// its own edges in turn, the same treatment a FindPivots-selected pivot gets.
func (s *solver) relaxEdges(u int, pending *[]int, inPending map[int]bool) {
	for _, e := range s.c.Adj[u] {
		v, w := e.To, e.W
		nd := s.dist[u] + w
		if nd < s.dist[v] {
			s.dist[v] = nd
			s.prev[v] = u
			s.edgeW[v] = w
			if !s.completed[v] && !inPending[v] {
				*pending = append(*pending, v)
				inPending[v] = true
			}
		}
	}
}

// baseCase is the level-0 (or empty-S) terminal of the BMSSP recursion:
// every vertex in S still under bound B is completed directly, relaxing
// its outgoing edges subject to the same bound.
func (s *solver) baseCase(B float64, S []int) (float64, []int) {
	var completedHere []int
	for _, u := range S {
		if s.dist[u] >= B || s.completed[u] {
			continue
		}
		s.markCompleted(u)
		completedHere = append(completedHere, u)
		for _, e := range s.c.Adj[u] {
			v, w := e.To, e.W
			nd := s.dist[u] + w
			if nd < B && nd < s.dist[v] {
				s.dist[v] = nd
				s.prev[v] = u
				s.edgeW[v] = w
			}
		}
	}
	return B, completedHere
}

// pow2Capped returns 2^e, saturating at a ceiling comfortably above any
// realistic vertex count so the level/t exponents in bmssp's bookkeeping
// never overflow a machine int.
func pow2Capped(e int) int {
	if e <= 0 {
		return 1
	}
	if e > 30 {
		return 1 << 30
	}
	return 1 << uint(e)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
