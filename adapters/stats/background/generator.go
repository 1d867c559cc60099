package background

import (
	"math/rand"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// Option adjusts the candidate grid of Random and Complete
type Option func(*Grid)

// WithStep spaces candidate slots step apart instead of one unit
func WithStep(step core.Millis) Option {
	return func(g *Grid) {
		if step > 0 {
			g.Step = step
		}
	}
}

func newGrid(duration core.Millis, opts []Option) Grid {
	g := Grid{Duration: duration, Step: 1}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// FromCandidates accepts candidates from src until numEvents distinct,
// unoccupied offsets are found. Offsets inside any consequence interval (ends
// included) and repeats are skipped. An exhausted source fails with
// core.ErrTooManyBackgroundEvents.
func FromCandidates(src CandidateSource, target behavior.KeyBehaviorMapping, consequences []behavior.Event, numEvents int) ([]behavior.Event, error) {
	return fromCandidates(src, target, newOccupancy(consequences), numEvents)
}

func fromCandidates(src CandidateSource, target behavior.KeyBehaviorMapping, occ *occupancy, numEvents int) ([]behavior.Event, error) {
	if numEvents <= 0 {
		return []behavior.Event{}, nil
	}
	events := make([]behavior.Event, 0, numEvents)
	accepted := make(map[core.Millis]struct{}, numEvents)
	for len(events) < numEvents {
		t, ok := src.Next()
		if !ok {
			return nil, core.NewTooManyBackgroundEventsError(numEvents, len(events))
		}
		if occ.contains(t) {
			continue
		}
		if _, dup := accepted[t]; dup {
			continue
		}
		accepted[t] = struct{}{}
		events = append(events, behavior.NewDiscrete(target, t))
	}
	return events, nil
}

// Random draws numEvents distinct unoccupied slots of [0, duration] uniformly
// without replacement. Feasibility is decided from the slot count before any
// draw: asking for more events than there are unoccupied slots fails with
// core.ErrTooManyBackgroundEvents.
func Random(rng *rand.Rand, target behavior.KeyBehaviorMapping, consequences []behavior.Event, duration core.Millis, numEvents int, opts ...Option) ([]behavior.Event, error) {
	grid := newGrid(duration, opts)
	occ := newOccupancy(consequences)

	available := occ.available(grid)
	if int64(numEvents) > available {
		return nil, core.NewTooManyBackgroundEventsError(numEvents, int(available))
	}
	return fromCandidates(NewPermutationSource(rng, grid), target, occ, numEvents)
}

// Available reports how many unoccupied slots Random could draw from
func Available(consequences []behavior.Event, duration core.Millis, opts ...Option) int {
	return int(newOccupancy(consequences).available(newGrid(duration, opts)))
}

// Complete returns an event at every unoccupied slot of [0, duration], ascending
func Complete(target behavior.KeyBehaviorMapping, consequences []behavior.Event, duration core.Millis, opts ...Option) []behavior.Event {
	grid := newGrid(duration, opts)
	occ := newOccupancy(consequences)

	events := make([]behavior.Event, 0, occ.available(grid))
	for i := int64(0); i < grid.Size(); i++ {
		t := grid.Slot(i)
		if !occ.contains(t) {
			events = append(events, behavior.NewDiscrete(target, t))
		}
	}
	return events
}
