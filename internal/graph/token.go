// Package graph implements the token/bridge routing graph model: vertices,
// weighted edges, and the shared route-result contract used by both the
// classical and PSB solvers.
package graph

import "fmt"

// TokenKey identifies a vertex: a token symbol on a specific chain.
type TokenKey struct {
	Symbol string
	Chain  string
}

// NewTokenKey builds a TokenKey from a symbol and chain name.
func NewTokenKey(symbol, chain string) TokenKey {
	return TokenKey{Symbol: symbol, Chain: chain}
}

func (k TokenKey) String() string {
	return fmt.Sprintf("%s.%s", k.Symbol, k.Chain)
}
