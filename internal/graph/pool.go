package graph

import "sync"

// ScratchPool recycles the float64/int/bool slices both solvers use as
// per-call distance/predecessor/visited state, indexed by compact vertex
// ID, with a single Acquire/Release pair per slice kind.
type ScratchPool struct {
	floats sync.Pool
	ints   sync.Pool
	bools  sync.Pool
}

var globalScratchPool = &ScratchPool{
	floats: sync.Pool{New: func() any { return make([]float64, 0, 64) }},
	ints:   sync.Pool{New: func() any { return make([]int, 0, 64) }},
	bools:  sync.Pool{New: func() any { return make([]bool, 0, 64) }},
}

// GetScratchPool returns the process-wide scratch pool.
func GetScratchPool() *ScratchPool { return globalScratchPool }

// Floats returns a float64 slice of length n, every entry set to the
// caller-supplied fill value.
func (p *ScratchPool) Floats(n int, fill float64) []float64 {
	s := p.floats.Get().([]float64)
	if cap(s) < n {
		s = make([]float64, n)
	} else {
		s = s[:n]
	}
	for i := range s {
		s[i] = fill
	}
	return s
}

// ReleaseFloats returns s to the pool.
func (p *ScratchPool) ReleaseFloats(s []float64) { p.floats.Put(s[:0]) } //nolint:staticcheck

// Ints returns an int slice of length n filled with fill.
func (p *ScratchPool) Ints(n int, fill int) []int {
	s := p.ints.Get().([]int)
	if cap(s) < n {
		s = make([]int, n)
	} else {
		s = s[:n]
	}
	for i := range s {
		s[i] = fill
	}
	return s
}

// ReleaseInts returns s to the pool.
func (p *ScratchPool) ReleaseInts(s []int) { p.ints.Put(s[:0]) } //nolint:staticcheck

// Bools returns a bool slice of length n, all false.
func (p *ScratchPool) Bools(n int) []bool {
	s := p.bools.Get().([]bool)
	if cap(s) < n {
		s = make([]bool, n)
	} else {
		s = s[:n]
		for i := range s {
			s[i] = false
		}
	}
	return s
}

// ReleaseBools returns s to the pool.
func (p *ScratchPool) ReleaseBools(s []bool) { p.bools.Put(s[:0]) } //nolint:staticcheck
