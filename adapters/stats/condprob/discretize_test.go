package condprob

import (
	"slices"
	"testing"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetEvents_Discrete(t *testing.T) {
	target := behavior.KeyBehaviorMapping{ID: "b1", Key: "b"}
	discrete := []behavior.DiscreteRecord{
		{Behavior: "b1", Time: 0},
		{Behavior: "b2", Time: 0},
		{Behavior: "b1", Time: 1},
	}

	events := TargetEvents(target, discrete, nil)

	require.Len(t, events, 2)
	for i, want := range []core.Millis{0, 1} {
		assert.Equal(t, core.BehaviorID("b1"), events[i].Behavior())
		assert.Equal(t, behavior.KeyOf("b1"), events[i].Key)
		assert.Equal(t, want, events[i].StartTime)
		assert.True(t, events[i].IsDiscrete())
	}
}

func TestTargetEvents_ContinuousIsDecomposedPerSecond(t *testing.T) {
	target := behavior.KeyBehaviorMapping{ID: "c1", Key: "c", Continuous: true}
	continuous := []behavior.ContinuousRecord{
		{Behavior: "c1", StartTime: 100, EndTime: 5001},
		{Behavior: "c2", StartTime: 3000, EndTime: 5000},
		{Behavior: "c1", StartTime: 6000, EndTime: 10000},
	}

	events := TargetEvents(target, nil, continuous)
	slices.SortFunc(events, behavior.ByStartTime)

	keys := make([]string, len(events))
	for i, e := range events {
		keys[i] = e.Key.String()
		assert.True(t, e.IsDiscrete())
		assert.Equal(t, e.Key.Tick, e.StartTime)
	}
	assert.Equal(t, []string{
		"c1-100", "c1-1100", "c1-2100", "c1-3100", "c1-4100",
		"c1-6000", "c1-7000", "c1-8000", "c1-9000", "c1-10000",
	}, keys)
}

func TestConsequenceEvents(t *testing.T) {
	discrete := []behavior.DiscreteRecord{
		{Behavior: "b1", Time: 0},
		{Behavior: "b2", Time: 0},
		{Behavior: "b1", Time: 1},
	}
	continuous := []behavior.ContinuousRecord{
		{Behavior: "b3", StartTime: 0, EndTime: 1},
		{Behavior: "b4", StartTime: 0, EndTime: 1},
		{Behavior: "b3", StartTime: 1, EndTime: 2},
	}

	events := ConsequenceEvents(behavior.KeyBehaviorMapping{ID: "b1", Key: "b"}, discrete, continuous)
	require.Len(t, events, 2)
	for i, want := range []core.Millis{0, 1} {
		assert.Equal(t, core.BehaviorID("b1"), events[i].Behavior())
		assert.Equal(t, want, events[i].StartTime)
		assert.Equal(t, behavior.KindContinuous, events[i].Kind)
		assert.Equal(t, want, events[i].EndTime())
	}

	events = ConsequenceEvents(behavior.KeyBehaviorMapping{ID: "b3", Key: "c", Continuous: true}, discrete, continuous)
	require.Len(t, events, 2)
	for i, want := range []core.Millis{0, 1} {
		assert.Equal(t, core.BehaviorID("b3"), events[i].Behavior())
		assert.Equal(t, want, events[i].StartTime)
		assert.Equal(t, core.Millis(1), events[i].Duration)
	}
}

func TestConvertToDiscrete_Continuous(t *testing.T) {
	m := behavior.KeyBehaviorMapping{ID: "x", Key: "x", Continuous: true}
	events := ConvertToDiscrete([]behavior.Event{behavior.NewContinuous(m, 1000, 2000)})

	require.Len(t, events, 3)
	want := core.Millis(1000)
	for _, e := range events {
		assert.Equal(t, want, e.StartTime)
		assert.Equal(t, behavior.KeyOf("x"), e.Key)
		assert.True(t, e.IsDiscrete())
		want += core.Second
	}
}

func TestConvertToDiscrete_DiscreteIsIdentity(t *testing.T) {
	m := behavior.KeyBehaviorMapping{ID: "x", Key: "x"}
	in := []behavior.Event{behavior.NewDiscrete(m, 1000), behavior.NewDiscrete(m, 2000)}

	assert.Equal(t, in, ConvertToDiscrete(in))
}

func TestConvertToDiscrete_ZeroLengthInterval(t *testing.T) {
	m := behavior.KeyBehaviorMapping{ID: "x", Key: "x", Continuous: true}
	events := ConvertToDiscrete([]behavior.Event{behavior.NewContinuous(m, 500, 0)})

	require.Len(t, events, 1)
	assert.Equal(t, core.Millis(500), events[0].StartTime)
}
