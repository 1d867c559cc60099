package behavior

import (
	"fmt"

	"gocondprob/domain/core"
)

// Schema is the set of behavior types a session was recorded against
type Schema struct {
	Name      string               `json:"name"`
	Behaviors []KeyBehaviorMapping `json:"behaviors"`
}

// Lookup finds a behavior type by identity
func (s Schema) Lookup(id core.BehaviorID) (KeyBehaviorMapping, bool) {
	for _, b := range s.Behaviors {
		if b.ID == id {
			return b, true
		}
	}
	return KeyBehaviorMapping{}, false
}

// Resolve finds a behavior type by identity or by its input key
func (s Schema) Resolve(ref string) (KeyBehaviorMapping, error) {
	if m, ok := s.Lookup(core.BehaviorID(ref)); ok {
		return m, nil
	}
	for _, b := range s.Behaviors {
		if b.Key == ref {
			return b, nil
		}
	}
	return KeyBehaviorMapping{}, fmt.Errorf("%w: %s", core.ErrBehaviorNotFound, ref)
}

// DiscreteRecord is an instant as logged during a session
type DiscreteRecord struct {
	Behavior core.BehaviorID `json:"behaviorUuid"`
	Time     core.Millis     `json:"time"`
}

// ContinuousRecord is an interval as logged during a session
type ContinuousRecord struct {
	Behavior  core.BehaviorID `json:"behaviorUuid"`
	StartTime core.Millis     `json:"startTime"`
	EndTime   core.Millis     `json:"endTime"`
}

// Session is a decoded observation log
type Session struct {
	ID            core.SessionID     `json:"uuid"`
	Schema        Schema             `json:"schema"`
	Observer      string             `json:"observer,omitempty"`
	Therapist     string             `json:"therapist,omitempty"`
	Condition     string             `json:"condition,omitempty"`
	Location      string             `json:"location,omitempty"`
	SessionNumber int                `json:"sessionNumber,omitempty"`
	Duration      core.Millis        `json:"duration"`
	Notes         string             `json:"notes,omitempty"`
	Discrete      []DiscreteRecord   `json:"discreteEvents"`
	Continuous    []ContinuousRecord `json:"continuousEvents"`
}

// Validate checks that every record references a schema behavior and spans a
// non-negative range.
func (s *Session) Validate() error {
	for _, r := range s.Discrete {
		if _, ok := s.Schema.Lookup(r.Behavior); !ok {
			return core.NewUnknownBehaviorError(r.Behavior)
		}
		if r.Time < 0 {
			return core.NewInvalidEventError(r.Behavior, fmt.Sprintf("negative time %d", r.Time))
		}
	}
	for _, r := range s.Continuous {
		if _, ok := s.Schema.Lookup(r.Behavior); !ok {
			return core.NewUnknownBehaviorError(r.Behavior)
		}
		if r.StartTime < 0 || r.EndTime < r.StartTime {
			return core.NewInvalidEventError(r.Behavior,
				fmt.Sprintf("invalid span [%d, %d]", r.StartTime, r.EndTime))
		}
	}
	return nil
}

// LastTime is the latest start or end time recorded in the session
func (s *Session) LastTime() core.Millis {
	last := s.Duration
	for _, r := range s.Discrete {
		if r.Time > last {
			last = r.Time
		}
	}
	for _, r := range s.Continuous {
		if r.EndTime > last {
			last = r.EndTime
		}
	}
	return last
}

// Candidates returns every schema behavior other than the target
func (s *Session) Candidates(target core.BehaviorID) []KeyBehaviorMapping {
	out := make([]KeyBehaviorMapping, 0, len(s.Schema.Behaviors))
	for _, b := range s.Schema.Behaviors {
		if b.ID != target {
			out = append(out, b)
		}
	}
	return out
}
