package graph

import "math"

// EdgeKind distinguishes a same-chain DEX swap from a cross-chain bridge hop.
type EdgeKind int

const (
	Swap EdgeKind = iota
	Bridge
)

func (k EdgeKind) String() string {
	if k == Bridge {
		return "bridge"
	}
	return "swap"
}

// Epsilon is the relative/absolute tolerance used for weight-sum and
// rate-duality comparisons.
const Epsilon = 1e-9

// ForestTolerance is the tighter tolerance PSB uses when deciding whether a
// vertex's recorded predecessor edge still matches its current distance.
const ForestTolerance = 1e-10

// MaxFinite stands in for the largest representable finite weight. Edges
// with a non-positive rate are clamped to MaxFinite/2 rather than +Inf so
// that two such edges on one path still sum to a finite value; a third
// pushes the sum to +Inf.
const MaxFinite = math.MaxFloat64

// Edge is a directed hop from the vertex owning the adjacency slice to
// Target, with provenance fields carried through to RouteStep untouched by
// the weight calculation.
type Edge struct {
	Target      TokenKey
	Kind        EdgeKind
	Rate        float64
	Gas         float64
	BridgeFee   float64
	Dex         string
	PoolAddress string
}

// Weight converts an edge into the solver's additive cost: -ln(rate) + gas,
// so that the cheapest path by sum-of-weights is the path with the greatest
// product of rates net of gas. A non-positive rate has no logarithm, so it
// is clamped to a large-but-finite penalty instead of +Inf; two such edges
// on the same path still sum to a finite, comparable number.
func Weight(e Edge) float64 {
	if e.Rate > 0 {
		return -math.Log(e.Rate) + e.Gas
	}
	return MaxFinite / 2
}
