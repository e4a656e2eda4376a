package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard span attribute keys.
const (
	AttrGraphNodes  = "graph.nodes"
	AttrGraphEdges  = "graph.edges"
	AttrSourceToken = "graph.source_token"
	AttrTargetToken = "graph.target_token"

	AttrAlgorithm   = "algorithm.name"
	AttrMaxHops     = "algorithm.max_hops"
	AttrTotalWeight = "algorithm.total_weight"
	AttrHopCount    = "algorithm.hop_count"
	AttrHeapOps     = "algorithm.heap_operations"
	AttrPivotsFound = "algorithm.pivots_found"
	AttrBarrierRuns = "algorithm.barrier_count"

	AttrValidationField = "validation.field"
	AttrValidationError = "validation.error"

	AttrCacheHit = "cache.hit"
)

// GraphAttributes returns span attributes describing the graph a solve
// ran over.
func GraphAttributes(nodes, edges int, source, target string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.String(AttrSourceToken, source),
		attribute.String(AttrTargetToken, target),
	}
}

// AlgorithmAttributes returns span attributes describing a solve's outcome.
func AlgorithmAttributes(name string, maxHops, hopCount int, totalWeight float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, name),
		attribute.Int(AttrMaxHops, maxHops),
		attribute.Int(AttrHopCount, hopCount),
		attribute.Float64(AttrTotalWeight, totalWeight),
	}
}

// ValidationAttributes returns span attributes describing a rejected query.
func ValidationAttributes(field, message string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrValidationField, field),
		attribute.String(AttrValidationError, message),
	}
}
