package condprob

import (
	"fmt"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
)

// ValidateWindow checks that a window size can be handed to the calculators
func ValidateWindow(window core.Millis) error {
	if window <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidWindow, window)
	}
	return nil
}

func mustValidWindow(window core.Millis) {
	if err := ValidateWindow(window); err != nil {
		panic(err)
	}
}

// All computes the four measures for one consequence behavior
func All(targets, consequences []behavior.Event, window core.Millis) stats.AllResults {
	mustValidWindow(window)
	ix := newIntervalIndex(consequences)
	return stats.NewAllResults(
		binaryEO(ix, targets, window),
		binaryNonEO(ix, targets, window),
		proportionEO(ix, targets, window),
		proportionNonEO(ix, targets, window),
	)
}

// BinaryNonEO is the share of all targets with a consequence in progress at
// onset or starting within the window.
func BinaryNonEO(targets, consequences []behavior.Event, window core.Millis) stats.Results {
	mustValidWindow(window)
	return binaryNonEO(newIntervalIndex(consequences), targets, window)
}

// BinaryEO is the share of targets without a consequence in progress at onset
// that are followed by one within the window.
func BinaryEO(targets, consequences []behavior.Event, window core.Millis) stats.Results {
	mustValidWindow(window)
	return binaryEO(newIntervalIndex(consequences), targets, window)
}

// ProportionNonEO is the share of total window time, over all targets, that
// overlapping or following consequences occupy.
func ProportionNonEO(targets, consequences []behavior.Event, window core.Millis) stats.Results {
	mustValidWindow(window)
	return proportionNonEO(newIntervalIndex(consequences), targets, window)
}

// ProportionEO is the share of window time following eligible targets that
// following consequences occupy. Targets with a consequence in progress at
// onset are excluded from both sides of the ratio.
func ProportionEO(targets, consequences []behavior.Event, window core.Millis) stats.Results {
	mustValidWindow(window)
	return proportionEO(newIntervalIndex(consequences), targets, window)
}

func binaryNonEO(ix *intervalIndex, targets []behavior.Event, window core.Millis) stats.Results {
	n := len(targets)
	if n == 0 {
		return stats.UndefinedResults(0, 0)
	}
	hits := 0
	for _, t := range targets {
		if ix.overlaps(t.StartTime) || ix.follows(t.StartTime, window) {
			hits++
		}
	}
	return stats.NewResults(float64(hits)/float64(n), n, n)
}

func binaryEO(ix *intervalIndex, targets []behavior.Event, window core.Millis) stats.Results {
	eligible, hits := 0, 0
	for _, t := range targets {
		if ix.overlaps(t.StartTime) {
			continue
		}
		eligible++
		if ix.follows(t.StartTime, window) {
			hits++
		}
	}
	if eligible == 0 {
		return stats.UndefinedResults(0, len(targets))
	}
	return stats.NewResults(float64(hits)/float64(eligible), eligible, len(targets))
}

func proportionNonEO(ix *intervalIndex, targets []behavior.Event, window core.Millis) stats.Results {
	n := len(targets)
	var covered int64
	for _, t := range targets {
		covered += int64(ix.followingDuration(t.StartTime, window))
		covered += int64(ix.overlappingDuration(t.StartTime, window))
	}
	possible := int64(window) * int64(n)
	if possible == 0 {
		return stats.UndefinedResults(n, n)
	}
	return stats.NewResults(float64(covered)/float64(possible), n, n)
}

func proportionEO(ix *intervalIndex, targets []behavior.Event, window core.Millis) stats.Results {
	eligible := 0
	var covered int64
	for _, t := range targets {
		if ix.overlaps(t.StartTime) {
			continue
		}
		eligible++
		covered += int64(ix.followingDuration(t.StartTime, window))
	}
	possible := int64(window) * int64(eligible)
	if possible == 0 {
		return stats.UndefinedResults(eligible, len(targets))
	}
	return stats.NewResults(float64(covered)/float64(possible), eligible, len(targets))
}
