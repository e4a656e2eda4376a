package graph

import "sort"

// compiledEdge is an adjacency entry resolved to a compact vertex index,
// carrying the precomputed weight and a pointer back to the source Edge so
// callers can report Kind/Gas/BridgeFee/Dex/PoolAddress without a second
// lookup.
type compiledEdge struct {
	To     int
	W      float64
	Source *Edge
}

// Compiled is a RouteGraph re-indexed to compact integers, built once per
// solver call so the core allocates all of its per-call state from dense
// slices rather than maps. Vertex IDs are assigned by sorting every
// vertex's string form, so two calls against
// the same RouteGraph content always produce the same IDs regardless of Go's
// randomized map-iteration order — adjacency order within a vertex is left
// untouched, since that is what path reconstruction depends on.
type Compiled struct {
	Keys  []TokenKey
	Index map[TokenKey]int
	Adj   [][]compiledEdge
}

// Compile builds a Compiled view of g. Every vertex reachable either as an
// explicit key or as some edge's target gets an ID; a vertex with no
// explicit entry in g is an isolated sink with an empty adjacency slice.
func Compile(g RouteGraph) *Compiled {
	seen := make(map[TokenKey]struct{}, len(g)*2)
	for k, edges := range g {
		seen[k] = struct{}{}
		for _, e := range edges {
			seen[e.Target] = struct{}{}
		}
	}

	keys := make([]TokenKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	index := make(map[TokenKey]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}

	adj := make([][]compiledEdge, len(keys))
	for k, edges := range g {
		from := index[k]
		if len(edges) == 0 {
			continue
		}
		list := make([]compiledEdge, len(edges))
		for i := range edges {
			list[i] = compiledEdge{To: index[edges[i].Target], W: Weight(edges[i]), Source: &edges[i]}
		}
		adj[from] = list
	}

	return &Compiled{Keys: keys, Index: index, Adj: adj}
}

// N returns the number of vertices in the compiled graph.
func (c *Compiled) N() int { return len(c.Keys) }
