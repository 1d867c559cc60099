package background

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	domainStats "gocondprob/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var marker = behavior.KeyBehaviorMapping{ID: "m1", Key: "m", Description: "marker"}

// markers at every odd second of a ten second session
func oddSecondMarkers() []behavior.Event {
	var out []behavior.Event
	for s := core.Millis(1); s < 10; s += 2 {
		out = append(out, behavior.NewDiscrete(marker, s*core.Second))
	}
	return out
}

func TestBaseline_DeterministicWhenEverySlotIsDrawn(t *testing.T) {
	cfg := BaselineConfig{Draws: 20, Events: 6, Duration: 10 * core.Second, Step: core.Second}
	observed := domainStats.NewAllResults(
		domainStats.NewResults(1, 6, 6),
		domainStats.NewResults(1, 6, 6),
		domainStats.NewResults(0.5, 6, 6),
		domainStats.NewResults(0.5, 6, 6),
	)

	baseline, err := Baseline(context.Background(), rand.New(rand.NewSource(1)), target, oddSecondMarkers(), 1500, observed, cfg)

	require.NoError(t, err)
	require.NotNil(t, baseline)
	assert.Equal(t, 6, baseline.Events)

	// targets at 0,2,...,10 s; all but the last are followed by a marker
	nonEO := baseline.Measures[domainStats.BinaryNonEO]
	assert.InDelta(t, 5.0/6, nonEO.Mean, 1e-9)
	assert.InDelta(t, 5.0/6, nonEO.Percentile95, 1e-9)
	assert.Equal(t, 20, nonEO.Draws)

	assert.InDelta(t, math.Pow(5.0/6, 6), baseline.PValue, 1e-9)
}

func TestBaseline_NoConsequences(t *testing.T) {
	cfg := BaselineConfig{Draws: 5, Events: 3, Duration: 30 * core.Second}
	observed := domainStats.NewAllResults(
		domainStats.UndefinedResults(0, 3),
		domainStats.NewResults(0, 3, 3),
		domainStats.UndefinedResults(0, 3),
		domainStats.NewResults(0, 3, 3),
	)

	baseline, err := Baseline(context.Background(), rand.New(rand.NewSource(2)), target, nil, 5*core.Second, observed, cfg)

	require.NoError(t, err)
	assert.Equal(t, 0.0, baseline.Mean(domainStats.BinaryNonEO))
	assert.Equal(t, 1.0, baseline.PValue)
}

func TestBaseline_SameSeedSameResult(t *testing.T) {
	consequences := []behavior.Event{span(2000, 3000), span(12000, 1000), span(20000, 4000)}
	cfg := BaselineConfig{Draws: 30, Events: 4, Duration: 30 * core.Second, Step: core.Second}
	observed := domainStats.NewAllResults(
		domainStats.NewResults(0.5, 4, 4),
		domainStats.NewResults(0.5, 4, 4),
		domainStats.NewResults(0.1, 4, 4),
		domainStats.NewResults(0.1, 4, 4),
	)

	a, err := Baseline(context.Background(), rand.New(rand.NewSource(7)), target, consequences, 5*core.Second, observed, cfg)
	require.NoError(t, err)
	b, err := Baseline(context.Background(), rand.New(rand.NewSource(7)), target, consequences, 5*core.Second, observed, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	for m, mb := range a.Measures {
		assert.Equal(t, cfg.Draws, mb.Draws, "measure %s", m)
	}
}

func TestBaseline_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	observed := domainStats.AllResults{}

	_, err := Baseline(context.Background(), rng, target, nil, 0, observed, BaselineConfig{Events: 1, Duration: 10})
	assert.ErrorIs(t, err, core.ErrInvalidWindow)

	cfg := BaselineConfig{Draws: 1, Events: 20, Duration: 10 * core.Second, Step: core.Second}
	_, err = Baseline(context.Background(), rng, target, nil, 1000, observed, cfg)
	assert.ErrorIs(t, err, core.ErrTooManyBackgroundEvents)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Baseline(ctx, rng, target, nil, 1000, observed, BaselineConfig{Events: 1, Duration: 10 * core.Second})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpperTail(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		p    float64
		want float64
	}{
		{"k zero", 10, 0, 0.3, 1},
		{"k above n", 3, 4, 0.9, 0},
		{"p zero", 5, 1, 0, 0},
		{"p one", 5, 5, 1, 1},
		{"single trial", 1, 1, 0.3, 0.3},
		{"all heads", 3, 3, 0.5, 0.125},
		{"half of ten", 10, 5, 0.5, 638.0 / 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpperTail(tt.n, tt.k, tt.p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UpperTail(%d, %d, %g) = %g, want %g", tt.n, tt.k, tt.p, got, tt.want)
			}
		})
	}
}
