package stats

// MeasureBaseline summarizes one measure across repeated background draws
type MeasureBaseline struct {
	Mean         float64 `json:"mean"`
	Percentile95 float64 `json:"percentile_95"`
	Draws        int     `json:"draws"`
}

// Baseline is the chance-level comparison for a candidate consequence.
// Measures that were undefined in every draw are absent from the map.
type Baseline struct {
	Measures map[Measure]MeasureBaseline `json:"measures"`
	Events   int                         `json:"events"`

	// PValue is the one-sided binomial probability of observing at least the
	// candidate's binary non-EO hit count if each target matched at the
	// background rate. It is Undefined when either side had no samples.
	PValue float64 `json:"p_value"`
}

// Mean returns the background mean for m, or Undefined when absent
func (b *Baseline) Mean(m Measure) float64 {
	if b == nil {
		return Undefined
	}
	mb, ok := b.Measures[m]
	if !ok {
		return Undefined
	}
	return mb.Mean
}
