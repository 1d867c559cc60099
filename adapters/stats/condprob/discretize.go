package condprob

import (
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// TargetEvents collects the instances of target as instants. Discrete records
// pass through; each continuous record becomes one instant per elapsed second
// from its start to its end inclusive, keyed by tick so every second counts as
// a separate sample.
func TargetEvents(target behavior.KeyBehaviorMapping, discrete []behavior.DiscreteRecord, continuous []behavior.ContinuousRecord) []behavior.Event {
	var events []behavior.Event
	for _, r := range discrete {
		if r.Behavior == target.ID {
			events = append(events, behavior.NewDiscrete(target, r.Time))
		}
	}
	for _, r := range continuous {
		if r.Behavior != target.ID {
			continue
		}
		for t := r.StartTime; t <= r.EndTime; t += core.Second {
			e := behavior.NewDiscrete(target, t)
			e.Key = behavior.TickKey(target.ID, t)
			events = append(events, e)
		}
	}
	return events
}

// ConsequenceEvents collects the instances of consequence as intervals.
// Discrete records become zero-duration intervals; nothing is decomposed.
func ConsequenceEvents(consequence behavior.KeyBehaviorMapping, discrete []behavior.DiscreteRecord, continuous []behavior.ContinuousRecord) []behavior.Event {
	var events []behavior.Event
	for _, r := range discrete {
		if r.Behavior == consequence.ID {
			events = append(events, behavior.NewDiscrete(consequence, r.Time).AsInterval())
		}
	}
	for _, r := range continuous {
		if r.Behavior == consequence.ID {
			events = append(events, behavior.NewContinuous(consequence, r.StartTime, r.EndTime-r.StartTime))
		}
	}
	return events
}

// ConvertToDiscrete expands every interval into per-second instants using the
// same inclusive stepping as TargetEvents, but keeps each event's original key.
// Discrete events are returned unchanged.
func ConvertToDiscrete(events []behavior.Event) []behavior.Event {
	out := make([]behavior.Event, 0, len(events))
	for _, e := range events {
		if e.IsDiscrete() {
			out = append(out, e)
			continue
		}
		for t := e.StartTime; t <= e.EndTime(); t += core.Second {
			tick := e
			tick.Kind = behavior.KindDiscrete
			tick.StartTime = t
			tick.Duration = 0
			out = append(out, tick)
		}
	}
	return out
}
