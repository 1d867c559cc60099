package condprob

import (
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

var (
	targetBehavior      = behavior.KeyBehaviorMapping{ID: "target", Key: "t", Description: "target"}
	consequenceBehavior = behavior.KeyBehaviorMapping{ID: "consequence", Key: "c", Description: "consequence", Continuous: true}
)

func targetsAt(times ...core.Millis) []behavior.Event {
	events := make([]behavior.Event, len(times))
	for i, t := range times {
		events[i] = behavior.NewDiscrete(targetBehavior, t)
	}
	return events
}

// spans takes (start, duration) pairs
func spans(pairs ...core.Millis) []behavior.Event {
	events := make([]behavior.Event, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		events = append(events, behavior.NewContinuous(consequenceBehavior, pairs[i], pairs[i+1]))
	}
	return events
}
