package background

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gocondprob/adapters/stats/condprob"
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	domainStats "gocondprob/domain/stats"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// BaselineConfig controls the chance-level comparison
type BaselineConfig struct {
	Draws    int         // repeated background samples (default: 100)
	Events   int         // synthetic targets per draw
	Duration core.Millis // candidate domain is [0, Duration]
	Step     core.Millis // slot spacing (default: 1s)
}

// DefaultBaselineConfig returns the settings used by the analysis service
func DefaultBaselineConfig() BaselineConfig {
	return BaselineConfig{
		Draws: 100,
		Step:  core.Second,
	}
}

// Baseline estimates how often consequences would match synthetic targets
// placed at random unoccupied times. Each draw places cfg.Events background
// targets with Random and scores them with the four calculators; the
// per-measure means and 95th percentiles summarize the draws. The observed
// binary non-EO hit count is tested against the mean background rate with a
// one-sided binomial tail.
func Baseline(ctx context.Context, rng *rand.Rand, target behavior.KeyBehaviorMapping, consequences []behavior.Event, window core.Millis, observed domainStats.AllResults, cfg BaselineConfig) (*domainStats.Baseline, error) {
	if err := condprob.ValidateWindow(window); err != nil {
		return nil, err
	}
	if cfg.Draws <= 0 {
		cfg.Draws = DefaultBaselineConfig().Draws
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultBaselineConfig().Step
	}

	samples := make(map[domainStats.Measure][]float64, len(domainStats.Measures))
	for i := 0; i < cfg.Draws; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events, err := Random(rng, target, consequences, cfg.Duration, cfg.Events, WithStep(cfg.Step))
		if err != nil {
			return nil, fmt.Errorf("background draw %d: %w", i, err)
		}
		all := condprob.All(events, consequences, window)
		for _, m := range domainStats.Measures {
			if r := all.Get(m); !r.IsUndefined() {
				samples[m] = append(samples[m], r.Probability)
			}
		}
	}

	baseline := &domainStats.Baseline{
		Measures: make(map[domainStats.Measure]domainStats.MeasureBaseline, len(samples)),
		Events:   cfg.Events,
		PValue:   domainStats.Undefined,
	}
	for m, values := range samples {
		mean, err := stats.Mean(values)
		if err != nil {
			return nil, fmt.Errorf("baseline mean for %s: %w", m, err)
		}
		p95, err := stats.Percentile(values, 95)
		if err != nil {
			return nil, fmt.Errorf("baseline percentile for %s: %w", m, err)
		}
		baseline.Measures[m] = domainStats.MeasureBaseline{Mean: mean, Percentile95: p95, Draws: len(values)}
	}

	if rate, ok := baseline.Measures[domainStats.BinaryNonEO]; ok && !observed.BinaryNonEO.IsUndefined() {
		n := observed.BinaryNonEO.Sampled
		hits := int(math.Round(observed.BinaryNonEO.Probability * float64(n)))
		baseline.PValue = UpperTail(n, hits, rate.Mean)
	}
	return baseline, nil
}

// UpperTail is P(X >= k) for X ~ Binomial(n, p)
func UpperTail(n, k int, p float64) float64 {
	switch {
	case k <= 0:
		return 1
	case k > n:
		return 0
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	dist := distuv.Binomial{N: float64(n), P: p}
	tail := dist.Survival(float64(k - 1))
	return math.Min(1, math.Max(0, tail))
}
