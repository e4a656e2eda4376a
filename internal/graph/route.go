package graph

// RouteStep is one hop of a resolved route, carrying both the raw edge the
// solver selected and its contribution to the path's total weight.
type RouteStep struct {
	From   TokenKey
	To     TokenKey
	Kind   EdgeKind
	Rate   float64
	Gas    float64
	Weight float64
	Dex    string
	Pool   string
}

// RouteResult is the common output contract both solvers return: the
// resolved path, its per-hop steps, and the total additive weight the path
// accumulated.
type RouteResult struct {
	Path        []TokenKey
	Steps       []RouteStep
	TotalWeight float64
}

// Output converts the additive weight back to the solver's native
// quantity: the product of net rates along the path (output = exp(-weight)).
func (r *RouteResult) Output() float64 {
	return expNeg(r.TotalWeight)
}

// ReconstructPath walks prev from target back to source over a compiled
// graph and resolves each hop against the original RouteGraph, picking the
// first adjacency entry in insertion order whose target matches the next
// vertex in the path. prev[i] == -1 marks the source.
func ReconstructPath(g RouteGraph, c *Compiled, dist []float64, prev []int, source, target int) (*RouteResult, bool) {
	if dist[target] == Infinity {
		return nil, false
	}

	var indices []int
	for v := target; ; {
		indices = append(indices, v)
		if v == source {
			break
		}
		p := prev[v]
		if p == -1 {
			return nil, false
		}
		v = p
	}
	for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
		indices[i], indices[j] = indices[j], indices[i]
	}

	path := make([]TokenKey, len(indices))
	for i, idx := range indices {
		path[i] = c.Keys[idx]
	}

	result := &RouteResult{Path: path}
	for i := 0; i < len(path)-1; i++ {
		from, to := path[i], path[i+1]
		edges := g[from]
		var chosen *Edge
		for j := range edges {
			if edges[j].Target == to {
				chosen = &edges[j]
				break
			}
		}
		if chosen == nil {
			// Should not happen: the forest was built from g's own edges.
			return nil, false
		}
		w := Weight(*chosen)
		result.Steps = append(result.Steps, RouteStep{
			From: from, To: to, Kind: chosen.Kind, Rate: chosen.Rate, Gas: chosen.Gas,
			Weight: w, Dex: chosen.Dex, Pool: chosen.PoolAddress,
		})
		result.TotalWeight += w
	}
	return result, true
}
