package testkit

import (
	"fmt"
	"math/rand"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// SessionGeneratorConfig configures the synthetic session generator
type SessionGeneratorConfig struct {
	Duration       core.Millis `json:"duration"`
	Targets        int         `json:"targets"`         // discrete target events
	ResponseRate   float64     `json:"response_rate"`   // chance a target is answered by the responsive behavior
	ResponseDelay  core.Millis `json:"response_delay"`  // answers start within (0, ResponseDelay)
	ResponseLength core.Millis `json:"response_length"` // answer interval length
	NoiseBehaviors int         `json:"noise_behaviors"` // unrelated continuous behaviors
	NoiseEvents    int         `json:"noise_events"`    // intervals per noise behavior
	NoiseLength    core.Millis `json:"noise_length"`    // noise interval length
	Seed           int64       `json:"seed"`
}

// DefaultSessionConfig returns a ten minute session with one strongly
// contingent behavior and three unrelated ones
func DefaultSessionConfig() SessionGeneratorConfig {
	return SessionGeneratorConfig{
		Duration:       10 * 60 * core.Second,
		Targets:        40,
		ResponseRate:   0.9,
		ResponseDelay:  3 * core.Second,
		ResponseLength: 2 * core.Second,
		NoiseBehaviors: 3,
		NoiseEvents:    15,
		NoiseLength:    4 * core.Second,
		Seed:           42,
	}
}

// Generated behaviors
var (
	GeneratedTarget     = behavior.KeyBehaviorMapping{ID: "gen-target", Key: "t", Description: "Target"}
	GeneratedResponsive = behavior.KeyBehaviorMapping{ID: "gen-responsive", Key: "r", Description: "Responsive", Continuous: true}
)

// SessionGenerator builds sessions with a known contingency
type SessionGenerator struct {
	config SessionGeneratorConfig
	rng    *rand.Rand
}

// NewSessionGenerator creates a new session generator
func NewSessionGenerator(config SessionGeneratorConfig) *SessionGenerator {
	return &SessionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces one session. Targets are spread over the first 90% of the
// session so answers stay inside it.
func (g *SessionGenerator) Generate() *behavior.Session {
	c := g.config
	s := &behavior.Session{
		ID:       core.SessionID(fmt.Sprintf("generated-%d", c.Seed)),
		Duration: c.Duration,
	}
	s.Schema.Name = "generated"
	s.Schema.Behaviors = append(s.Schema.Behaviors, GeneratedTarget, GeneratedResponsive)

	span := int64(c.Duration) * 9 / 10
	for i := 0; i < c.Targets; i++ {
		t := core.Millis(g.rng.Int63n(span))
		s.Discrete = append(s.Discrete, behavior.DiscreteRecord{Behavior: GeneratedTarget.ID, Time: t})
		if g.rng.Float64() < c.ResponseRate && c.ResponseDelay > 1 {
			start := t + 1 + core.Millis(g.rng.Int63n(int64(c.ResponseDelay-1)))
			s.Continuous = append(s.Continuous, behavior.ContinuousRecord{
				Behavior: GeneratedResponsive.ID, StartTime: start, EndTime: start + c.ResponseLength,
			})
		}
	}

	for n := 0; n < c.NoiseBehaviors; n++ {
		noise := behavior.KeyBehaviorMapping{
			ID:          core.BehaviorID(fmt.Sprintf("gen-noise-%d", n+1)),
			Key:         fmt.Sprintf("n%d", n+1),
			Description: fmt.Sprintf("Noise %d", n+1),
			Continuous:  true,
		}
		s.Schema.Behaviors = append(s.Schema.Behaviors, noise)
		for i := 0; i < c.NoiseEvents; i++ {
			start := core.Millis(g.rng.Int63n(int64(c.Duration - c.NoiseLength)))
			s.Continuous = append(s.Continuous, behavior.ContinuousRecord{
				Behavior: noise.ID, StartTime: start, EndTime: start + c.NoiseLength,
			})
		}
	}
	return s
}
