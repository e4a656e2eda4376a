package graph

import "math"

// Infinity is the "unreached" distance sentinel both solvers initialize
// dist[] to. It is distinct from the MaxFinite/2 per-edge clamp: a path can
// legitimately sum two MaxFinite/2 edges without overflowing, but a
// vertex the solver never relaxed keeps dist == Infinity until it is
// reached.
var Infinity = math.Inf(1)

func expNeg(weight float64) float64 {
	if math.IsInf(weight, 1) {
		return 0
	}
	return math.Exp(-weight)
}
