package condprob

import (
	"sort"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// Overlaps reports whether some consequence was already in progress at the
// target's onset: c.Start < t.Start < c.End. Boundary-exact starts and ends do
// not count.
func Overlaps(consequences []behavior.Event, target behavior.Event) bool {
	for _, c := range consequences {
		if c.StartTime < target.StartTime && c.EndTime() > target.StartTime {
			return true
		}
	}
	return false
}

// Follows reports whether some consequence begins strictly inside the window
// after the target's onset: t.Start < c.Start < t.Start+window.
func Follows(consequences []behavior.Event, target behavior.Event, window core.Millis) bool {
	end := target.StartTime + window
	for _, c := range consequences {
		if c.StartTime > target.StartTime && c.StartTime < end {
			return true
		}
	}
	return false
}

// clippedDuration is the part of c that falls inside [t, t+window]
func clippedDuration(c behavior.Event, t, window core.Millis) core.Millis {
	end := c.EndTime()
	if windowEnd := t + window; end > windowEnd {
		end = windowEnd
	}
	start := c.StartTime
	if start < t {
		start = t
	}
	return end - start
}

// intervalIndex answers Overlaps and Follows in logarithmic time. Events are
// sorted by start; maxEnd[i] is the latest end among events[:i+1].
type intervalIndex struct {
	events []behavior.Event
	maxEnd []core.Millis
}

func newIntervalIndex(consequences []behavior.Event) *intervalIndex {
	events := make([]behavior.Event, len(consequences))
	copy(events, consequences)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime < events[j].StartTime
	})

	maxEnd := make([]core.Millis, len(events))
	for i, e := range events {
		maxEnd[i] = e.EndTime()
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &intervalIndex{events: events, maxEnd: maxEnd}
}

// startingBefore is the number of events with Start < t
func (ix *intervalIndex) startingBefore(t core.Millis) int {
	return sort.Search(len(ix.events), func(i int) bool {
		return ix.events[i].StartTime >= t
	})
}

// startingAfter is the index of the first event with Start > t
func (ix *intervalIndex) startingAfter(t core.Millis) int {
	return sort.Search(len(ix.events), func(i int) bool {
		return ix.events[i].StartTime > t
	})
}

func (ix *intervalIndex) overlaps(t core.Millis) bool {
	k := ix.startingBefore(t)
	return k > 0 && ix.maxEnd[k-1] > t
}

func (ix *intervalIndex) follows(t, window core.Millis) bool {
	i := ix.startingAfter(t)
	return i < len(ix.events) && ix.events[i].StartTime < t+window
}

// overlappingDuration sums the clipped durations of events in progress at t
func (ix *intervalIndex) overlappingDuration(t, window core.Millis) core.Millis {
	var total core.Millis
	k := ix.startingBefore(t)
	if k == 0 || ix.maxEnd[k-1] <= t {
		return 0
	}
	for _, c := range ix.events[:k] {
		if c.EndTime() > t {
			total += clippedDuration(c, t, window)
		}
	}
	return total
}

// followingDuration sums the clipped durations of events starting in (t, t+window)
func (ix *intervalIndex) followingDuration(t, window core.Millis) core.Millis {
	var total core.Millis
	end := t + window
	for _, c := range ix.events[ix.startingAfter(t):] {
		if c.StartTime >= end {
			break
		}
		total += clippedDuration(c, t, window)
	}
	return total
}
