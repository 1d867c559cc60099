package condprob

import (
	"math/rand"
	"testing"

	"gocondprob/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	target := targetsAt(5000)[0]
	tests := []struct {
		name  string
		start core.Millis
		dur   core.Millis
		want  bool
	}{
		{"in progress", 4000, 2000, true},
		{"starts at onset", 5000, 2000, false},
		{"ends at onset", 3000, 2000, false},
		{"zero length before onset", 4000, 0, false},
		{"after onset", 6000, 2000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(spans(tt.start, tt.dur), target))
			ix := newIntervalIndex(spans(tt.start, tt.dur))
			assert.Equal(t, tt.want, ix.overlaps(target.StartTime))
		})
	}
}

func TestFollows(t *testing.T) {
	target := targetsAt(5000)[0]
	tests := []struct {
		name  string
		start core.Millis
		want  bool
	}{
		{"inside window", 7000, true},
		{"simultaneous", 5000, false},
		{"at window close", 10000, false},
		{"just before close", 9999, true},
		{"before target", 4000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Follows(spans(tt.start, 100), target, core.Window5s))
			ix := newIntervalIndex(spans(tt.start, 100))
			assert.Equal(t, tt.want, ix.follows(target.StartTime, core.Window5s))
		})
	}
}

func TestIntervalIndex_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		targets, consequences := randomScenario(rng)
		window := core.Millis(1+rng.Intn(20)) * 250
		ix := newIntervalIndex(consequences)
		for _, target := range targets {
			if Overlaps(consequences, target) != ix.overlaps(target.StartTime) {
				t.Fatalf("overlaps mismatch at %d", target.StartTime)
			}
			if Follows(consequences, target, window) != ix.follows(target.StartTime, window) {
				t.Fatalf("follows mismatch at %d", target.StartTime)
			}
		}
	}
}

func TestClippedDuration(t *testing.T) {
	c := spans(3000, 2000)[0]
	assert.Equal(t, core.Millis(1000), clippedDuration(c, 4000, core.Window5s))
	assert.Equal(t, core.Millis(500), clippedDuration(spans(9500, 3000)[0], 5000, core.Window5s))
}
