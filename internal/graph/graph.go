package graph

// RouteGraph maps each vertex to its outgoing edges, in the exact order
// they were inserted. Adjacency order is semantically significant: path
// reconstruction selects the first adjacency entry matching a given
// successor, so callers that care which parallel edge is reported must
// control insertion order.
type RouteGraph map[TokenKey][]Edge

// HasVertex reports whether key is addressable in the graph, either as an
// explicit key or as some edge's target. An edge may point at a vertex that
// never appears as a map key, which is treated as an isolated sink with no
// outgoing edges of its own.
func (g RouteGraph) HasVertex(key TokenKey) bool {
	if _, ok := g[key]; ok {
		return true
	}
	for _, edges := range g {
		for _, e := range edges {
			if e.Target == key {
				return true
			}
		}
	}
	return false
}

// AddEdge appends an edge to source's adjacency list, creating the list if
// necessary. It does not implicitly create an entry for the target.
func (g RouteGraph) AddEdge(source TokenKey, e Edge) {
	g[source] = append(g[source], e)
}
