package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"tokenroute/internal/graph"
)

// GraphHash computes a deterministic hash of a RouteGraph for use as a
// cache-key component.
func GraphHash(g graph.RouteGraph) string {
	if len(g) == 0 {
		return ""
	}

	hash := sha256.Sum256(graphToCanonical(g))
	return hex.EncodeToString(hash[:16])
}

// graphToCanonical builds a deterministic byte representation of a
// RouteGraph: vertices sorted by their string form, each vertex's edges
// kept in original adjacency order (order is semantically meaningful for
// path reconstruction, so it is encoded positionally rather than sorted).
func graphToCanonical(g graph.RouteGraph) []byte {
	keys := make([]string, 0, len(g))
	byKey := make(map[string]graph.TokenKey, len(g))
	for k := range g {
		s := k.String()
		keys = append(keys, s)
		byKey[s] = k
	}
	sort.Strings(keys)

	var result []byte
	for _, ks := range keys {
		k := byKey[ks]
		result = append(result, []byte(fmt.Sprintf("v:%s;", ks))...)
		for i, e := range g[k] {
			result = append(result, []byte(fmt.Sprintf(
				"e:%d:%s:%d:%.10f:%.10f;", i, e.Target.String(), e.Kind, e.Rate, e.Gas,
			))...)
		}
	}
	return result
}

// BuildSolveKey builds the cache key for a single solve call's result.
func BuildSolveKey(graphHash, source, target, algorithm string, maxHops int) string {
	return fmt.Sprintf("solve:%s:%s:%s:%s:%d", algorithm, graphHash, source, target, maxHops)
}

// QuickHash is a generic full-length hash for arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a 16-character truncated hash for arbitrary data.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
