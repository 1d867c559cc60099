package background

import (
	"sort"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// Grid is the candidate domain: every multiple of Step in [0, Duration]
type Grid struct {
	Duration core.Millis
	Step     core.Millis
}

// Size is the number of slots in the grid
func (g Grid) Size() int64 {
	if g.Duration < 0 || g.Step <= 0 {
		return 0
	}
	return int64(g.Duration/g.Step) + 1
}

// Slot returns the offset of the i-th slot
func (g Grid) Slot(i int64) core.Millis {
	return core.Millis(i) * g.Step
}

// occupancy is the union of the closed consequence intervals [Start, End]
type occupancy struct {
	spans [][2]core.Millis
}

func newOccupancy(consequences []behavior.Event) *occupancy {
	spans := make([][2]core.Millis, 0, len(consequences))
	for _, c := range consequences {
		spans = append(spans, [2]core.Millis{c.StartTime, c.EndTime()})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	merged := spans[:0]
	for _, s := range spans {
		if n := len(merged); n > 0 && s[0] <= merged[n-1][1] {
			if s[1] > merged[n-1][1] {
				merged[n-1][1] = s[1]
			}
			continue
		}
		merged = append(merged, s)
	}
	return &occupancy{spans: merged}
}

// contains reports whether some consequence interval covers x, ends included
func (o *occupancy) contains(x core.Millis) bool {
	i := sort.Search(len(o.spans), func(i int) bool { return o.spans[i][1] >= x })
	return i < len(o.spans) && o.spans[i][0] <= x
}

// occupiedSlots counts grid slots covered by the occupancy
func (o *occupancy) occupiedSlots(g Grid) int64 {
	if g.Size() == 0 {
		return 0
	}
	var count int64
	for _, s := range o.spans {
		lo, hi := s[0], s[1]
		if lo < 0 {
			lo = 0
		}
		if hi > g.Duration {
			hi = g.Duration
		}
		if lo > hi {
			continue
		}
		first := (lo + g.Step - 1) / g.Step
		last := hi / g.Step
		if last >= first {
			count += int64(last - first + 1)
		}
	}
	return count
}

// available is the number of unoccupied slots in the grid
func (o *occupancy) available(g Grid) int64 {
	return g.Size() - o.occupiedSlots(g)
}
