package behavior

import (
	"fmt"

	"gocondprob/domain/core"
)

// Kind tags an Event as an instant or an interval
type Kind string

const (
	KindDiscrete   Kind = "discrete"
	KindContinuous Kind = "continuous"
)

// KeyBehaviorMapping defines a behavior type in a session schema. Instances of
// a continuous mapping are logged as intervals, all others as instants.
type KeyBehaviorMapping struct {
	ID          core.BehaviorID `json:"uuid"`
	Key         string          `json:"key"`
	Description string          `json:"description"`
	Continuous  bool            `json:"isContinuous"`
}

// Label renders the mapping the way reports show it: "description (key)"
func (m KeyBehaviorMapping) Label() string {
	return fmt.Sprintf("%s (%s)", m.Description, m.Key)
}

// InstanceKey identifies one sample of a behavior. Ticked keys are produced when
// an interval is decomposed into per-second instants so that each tick counts
// as a distinct occurrence.
type InstanceKey struct {
	Behavior core.BehaviorID `json:"behavior"`
	Tick     core.Millis     `json:"tick,omitempty"`
	Ticked   bool            `json:"ticked,omitempty"`
}

// KeyOf returns the untick'd instance key for a behavior
func KeyOf(id core.BehaviorID) InstanceKey {
	return InstanceKey{Behavior: id}
}

// TickKey returns the key of the tick at t of behavior id
func TickKey(id core.BehaviorID, t core.Millis) InstanceKey {
	return InstanceKey{Behavior: id, Tick: t, Ticked: true}
}

// String renders "<uuid>" or "<uuid>-<tick>"
func (k InstanceKey) String() string {
	if !k.Ticked {
		return k.Behavior.String()
	}
	return fmt.Sprintf("%s-%d", k.Behavior, int64(k.Tick))
}

// Event is a single behavioral occurrence. Discrete events are instants and
// carry no duration; continuous events span [StartTime, StartTime+Duration].
type Event struct {
	Kind        Kind        `json:"kind"`
	Key         InstanceKey `json:"key"`
	Shortcut    string      `json:"shortcut,omitempty"`
	Description string      `json:"description,omitempty"`
	StartTime   core.Millis `json:"start_ms"`
	Duration    core.Millis `json:"duration_ms,omitempty"`
}

// NewDiscrete creates an instant of mapping m at t
func NewDiscrete(m KeyBehaviorMapping, t core.Millis) Event {
	return Event{
		Kind:        KindDiscrete,
		Key:         KeyOf(m.ID),
		Shortcut:    m.Key,
		Description: m.Description,
		StartTime:   t,
	}
}

// NewContinuous creates an interval of mapping m starting at start
func NewContinuous(m KeyBehaviorMapping, start, duration core.Millis) Event {
	return Event{
		Kind:        KindContinuous,
		Key:         KeyOf(m.ID),
		Shortcut:    m.Key,
		Description: m.Description,
		StartTime:   start,
		Duration:    duration,
	}
}

// Behavior returns the behavior type this event is an instance of
func (e Event) Behavior() core.BehaviorID {
	return e.Key.Behavior
}

// EndTime is StartTime for instants and StartTime+Duration for intervals
func (e Event) EndTime() core.Millis {
	if e.Kind == KindContinuous {
		return e.StartTime + e.Duration
	}
	return e.StartTime
}

// IsDiscrete reports whether the event is an instant
func (e Event) IsDiscrete() bool {
	return e.Kind != KindContinuous
}

// AsInterval returns the event as a continuous span; instants become
// zero-duration intervals.
func (e Event) AsInterval() Event {
	if e.Kind == KindContinuous {
		return e
	}
	e.Kind = KindContinuous
	e.Duration = 0
	return e
}

// Validate checks the start and duration invariants
func (e Event) Validate() error {
	if e.StartTime < 0 {
		return core.NewInvalidEventError(e.Behavior(), fmt.Sprintf("negative start time %d", e.StartTime))
	}
	if e.Duration < 0 {
		return core.NewInvalidEventError(e.Behavior(), fmt.Sprintf("negative duration %d", e.Duration))
	}
	if e.Kind == KindDiscrete && e.Duration != 0 {
		return core.NewInvalidEventError(e.Behavior(), "discrete event with a duration")
	}
	return nil
}

// ByStartTime orders events by start time, then by instance key
func ByStartTime(a, b Event) int {
	switch {
	case a.StartTime < b.StartTime:
		return -1
	case a.StartTime > b.StartTime:
		return 1
	}
	as, bs := a.Key.String(), b.Key.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
