package stats

import (
	"math"
	"testing"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults_Equal(t *testing.T) {
	assert.True(t, NewResults(0.5, 2, 2).Equal(NewResults(1.0/2, 2, 2)))
	assert.False(t, NewResults(0.5, 2, 2).Equal(NewResults(0.5, 1, 2)))
	assert.False(t, NewResults(0.5, 2, 2).Equal(NewResults(0.5, 2, 3)))
	// bit-exact comparison distinguishes signed zeros
	assert.False(t, NewResults(0.0, 1, 1).Equal(NewResults(math.Copysign(0, -1), 1, 1)))
}

func TestResults_Undefined(t *testing.T) {
	r := UndefinedResults(0, 0)
	assert.True(t, r.IsUndefined())
	assert.False(t, NewResults(0, 2, 2).IsUndefined())
	assert.Equal(t, "Results(-1, 0, 0)", r.String())
}

func TestNewAllResults_AverageIncludesSentinels(t *testing.T) {
	all := NewAllResults(
		NewResults(1, 1, 2),
		NewResults(0.5, 2, 2),
		UndefinedResults(0, 2),
		NewResults(0.1, 2, 2),
	)
	assert.InDelta(t, (1+0.5-1+0.1)/4, all.Avg, 1e-12)
	assert.True(t, all.AnyUndefined())
	assert.Equal(t, all.ProportionNonEO, all.Get(ProportionNonEO))
	assert.Equal(t, all.BinaryEO, all.Get(BinaryEO))
}

func TestCompare_TruncatesToThreeDecimals(t *testing.T) {
	a := AllResults{Avg: 0.50049}
	b := AllResults{Avg: 0.50001}
	c := AllResults{Avg: 0.501}

	assert.Equal(t, 0, Compare(a, b))
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, 1, Compare(c, b))
}

func TestRank_DescendingAndStable(t *testing.T) {
	mk := func(key string, avg float64) Candidate {
		return Candidate{
			Behavior: behavior.KeyBehaviorMapping{ID: core.BehaviorID("id-" + key), Key: key},
			Results:  AllResults{Avg: avg},
		}
	}
	in := []Candidate{
		mk("a", 0.2),
		mk("b", 0.7),
		mk("c", 0.20001),
		mk("d", -1),
		mk("e", 0.9),
	}

	ranked := Rank(in)

	require.Len(t, ranked, 5)
	keys := make([]string, len(ranked))
	for i, c := range ranked {
		keys[i] = c.Behavior.Key
	}
	assert.Equal(t, []string{"e", "b", "a", "c", "d"}, keys)
	// input untouched
	assert.Equal(t, "a", in[0].Behavior.Key)
}

func TestRankMap(t *testing.T) {
	x := behavior.KeyBehaviorMapping{ID: "x", Key: "x"}
	y := behavior.KeyBehaviorMapping{ID: "y", Key: "y"}
	z := behavior.KeyBehaviorMapping{ID: "z", Key: "z"}
	ranked := RankMap(map[behavior.KeyBehaviorMapping]AllResults{
		z: {Avg: 0.1},
		x: {Avg: 0.1},
		y: {Avg: 0.3},
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, "y", ranked[0].Behavior.Key)
	assert.Equal(t, "x", ranked[1].Behavior.Key)
	assert.Equal(t, "z", ranked[2].Behavior.Key)
}

func TestBaseline_Mean(t *testing.T) {
	var nilBaseline *Baseline
	assert.Equal(t, Undefined, nilBaseline.Mean(BinaryEO))

	b := &Baseline{Measures: map[Measure]MeasureBaseline{BinaryEO: {Mean: 0.25, Draws: 3}}}
	assert.Equal(t, 0.25, b.Mean(BinaryEO))
	assert.Equal(t, Undefined, b.Mean(ProportionEO))
}
