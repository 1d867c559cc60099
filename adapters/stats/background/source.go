package background

import (
	"math/rand"

	"gocondprob/domain/core"
)

// CandidateSource yields candidate time offsets for background events. Next
// reports false once the source is exhausted.
type CandidateSource interface {
	Next() (core.Millis, bool)
}

// SliceSource yields a fixed sequence of candidates in order
type SliceSource struct {
	values []core.Millis
	pos    int
}

// NewSliceSource creates a finite candidate source
func NewSliceSource(values ...core.Millis) *SliceSource {
	return &SliceSource{values: values}
}

func (s *SliceSource) Next() (core.Millis, bool) {
	if s.pos >= len(s.values) {
		return 0, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// FuncSource adapts a generator function, e.g. an unbounded random stream
type FuncSource func() (core.Millis, bool)

func (f FuncSource) Next() (core.Millis, bool) { return f() }

// PermutationSource yields every slot of a grid exactly once in uniformly
// random order. The Fisher-Yates shuffle is applied lazily and only the
// displaced positions are stored, so large grids cost nothing up front.
type PermutationSource struct {
	rng       *rand.Rand
	grid      Grid
	remaining int64
	displaced map[int64]int64
}

// NewPermutationSource creates a draw-without-replacement source over grid
func NewPermutationSource(rng *rand.Rand, grid Grid) *PermutationSource {
	return &PermutationSource{
		rng:       rng,
		grid:      grid,
		remaining: grid.Size(),
		displaced: make(map[int64]int64),
	}
}

func (p *PermutationSource) at(i int64) int64 {
	if v, ok := p.displaced[i]; ok {
		return v
	}
	return i
}

func (p *PermutationSource) Next() (core.Millis, bool) {
	if p.remaining == 0 {
		return 0, false
	}
	j := p.rng.Int63n(p.remaining)
	last := p.remaining - 1
	picked := p.at(j)
	p.displaced[j] = p.at(last)
	delete(p.displaced, last)
	p.remaining--
	return p.grid.Slot(picked), true
}
