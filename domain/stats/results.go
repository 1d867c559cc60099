package stats

import (
	"fmt"
	"math"
	"slices"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// Undefined is the probability reported when a measure had no eligible samples.
// It is distinct from 0.0, which means samples existed and none matched.
const Undefined = -1.0

// Results is one conditional-probability measure
type Results struct {
	Probability float64 `json:"probability"`
	Sampled     int     `json:"sampled"`
	Total       int     `json:"total"`
}

// NewResults builds a Results value
func NewResults(probability float64, sampled, total int) Results {
	return Results{Probability: probability, Sampled: sampled, Total: total}
}

// UndefinedResults reports a measure with an empty denominator
func UndefinedResults(sampled, total int) Results {
	return Results{Probability: Undefined, Sampled: sampled, Total: total}
}

// IsUndefined reports whether the measure carries the empty-sample sentinel
func (r Results) IsUndefined() bool {
	return r.Probability == Undefined
}

// Equal compares all three fields; probability is compared bit for bit
func (r Results) Equal(o Results) bool {
	return math.Float64bits(r.Probability) == math.Float64bits(o.Probability) &&
		r.Sampled == o.Sampled &&
		r.Total == o.Total
}

func (r Results) String() string {
	return fmt.Sprintf("Results(%g, %d, %d)", r.Probability, r.Sampled, r.Total)
}

// Measure names one of the four conditional-probability measures
type Measure string

const (
	BinaryEO        Measure = "binary_eo"
	BinaryNonEO     Measure = "binary_non_eo"
	ProportionEO    Measure = "proportion_eo"
	ProportionNonEO Measure = "proportion_non_eo"
)

// Measures lists the measures in report column order
var Measures = []Measure{BinaryEO, BinaryNonEO, ProportionEO, ProportionNonEO}

// AllResults bundles the four measures for one candidate consequence. Avg is
// the plain mean of the four probabilities, sentinels included; filter
// undefined candidates before relying on it.
type AllResults struct {
	BinaryEO        Results `json:"binary_eo"`
	BinaryNonEO     Results `json:"binary_non_eo"`
	ProportionEO    Results `json:"proportion_eo"`
	ProportionNonEO Results `json:"proportion_non_eo"`
	Avg             float64 `json:"avg"`
}

// NewAllResults bundles the measures and derives Avg
func NewAllResults(binaryEO, binaryNonEO, proportionEO, proportionNonEO Results) AllResults {
	return AllResults{
		BinaryEO:        binaryEO,
		BinaryNonEO:     binaryNonEO,
		ProportionEO:    proportionEO,
		ProportionNonEO: proportionNonEO,
		Avg: (binaryEO.Probability + binaryNonEO.Probability +
			proportionEO.Probability + proportionNonEO.Probability) / 4,
	}
}

// Get returns the named measure
func (a AllResults) Get(m Measure) Results {
	switch m {
	case BinaryEO:
		return a.BinaryEO
	case BinaryNonEO:
		return a.BinaryNonEO
	case ProportionEO:
		return a.ProportionEO
	default:
		return a.ProportionNonEO
	}
}

// AnyUndefined reports whether any of the four measures lacked samples
func (a AllResults) AnyUndefined() bool {
	return a.BinaryEO.IsUndefined() || a.BinaryNonEO.IsUndefined() ||
		a.ProportionEO.IsUndefined() || a.ProportionNonEO.IsUndefined()
}

// Compare orders by Avg truncated to three decimals. It returns a negative
// number when a ranks below b.
func Compare(a, b AllResults) int {
	ta, tb := math.Floor(a.Avg*1000), math.Floor(b.Avg*1000)
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}
	return 0
}

// Candidate is a consequence behavior and its measures
type Candidate struct {
	Behavior behavior.KeyBehaviorMapping `json:"behavior"`
	Results  AllResults                  `json:"results"`
	Baseline *Baseline                   `json:"baseline,omitempty"`
}

// Rank returns the candidates ordered by descending Compare. Ties keep their
// input order; the input slice is not modified.
func Rank(candidates []Candidate) []Candidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return Compare(b.Results, a.Results)
	})
	return ranked
}

// RankMap ranks a behavior-keyed result set. Map iteration order is not
// stable, so ties are broken by the behavior's input key then identity.
func RankMap(results map[behavior.KeyBehaviorMapping]AllResults) []Candidate {
	candidates := make([]Candidate, 0, len(results))
	for b, r := range results {
		candidates = append(candidates, Candidate{Behavior: b, Results: r})
	}
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if a.Behavior.Key != b.Behavior.Key {
			if a.Behavior.Key < b.Behavior.Key {
				return -1
			}
			return 1
		}
		switch {
		case a.Behavior.ID < b.Behavior.ID:
			return -1
		case a.Behavior.ID > b.Behavior.ID:
			return 1
		}
		return 0
	})
	return Rank(candidates)
}

// Analysis is one ranked run of the calculator for a target behavior
type Analysis struct {
	ID         core.AnalysisID             `json:"id"`
	SessionID  core.SessionID              `json:"session_id"`
	Source     string                      `json:"source,omitempty"`
	Target     behavior.KeyBehaviorMapping `json:"target"`
	Window     core.Millis                 `json:"window_ms"`
	Targets    int                         `json:"targets"`
	Candidates []Candidate                 `json:"candidates"`
	CreatedAt  core.Timestamp              `json:"created_at"`
}
