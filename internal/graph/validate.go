package graph

import "tokenroute/pkg/apperror"

// ValidateQuery checks the invalid-input preconditions common to every
// solver: source and target must both be addressable in g, and maxHops
// (when meaningful, i.e. for the classical solver) must be non-negative.
func ValidateQuery(g RouteGraph, source, target TokenKey, maxHops int) error {
	if len(g) == 0 {
		return apperror.ErrEmptyGraph
	}
	if !g.HasVertex(source) {
		return apperror.InvalidInput("source", "source vertex "+source.String()+" is not in the graph")
	}
	if !g.HasVertex(target) {
		return apperror.InvalidInput("target", "target vertex "+target.String()+" is not in the graph")
	}
	if maxHops < 0 {
		return apperror.InvalidInput("maxHops", "maxHops must be non-negative")
	}
	return nil
}
