package core

import (
	"fmt"
	"time"
)

// Millis is an offset from session start in milliseconds
type Millis int64

// Second is the tick used when interval events are discretized
const Second Millis = 1000

// Common window sizes offered by the calculator
const (
	Window5s  Millis = 5000
	Window10s Millis = 10000
	Window15s Millis = 15000
	Window20s Millis = 20000
)

// MillisFromDuration converts a time.Duration to whole milliseconds
func MillisFromDuration(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// MillisFromSeconds converts whole seconds to milliseconds
func MillisFromSeconds(s int) Millis {
	return Millis(s) * Second
}

// Duration returns the offset as a time.Duration
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Seconds returns the offset in (possibly fractional) seconds
func (m Millis) Seconds() float64 {
	return float64(m) / float64(Second)
}

// String renders the offset as mm:ss.mmm
func (m Millis) String() string {
	if m < 0 {
		return "-" + (-m).String()
	}
	minutes := m / (60 * Second)
	rest := m % (60 * Second)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, rest/Second, rest%Second)
}

// Timestamp represents a point in wall-clock time
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// MarshalJSON encodes the timestamp as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

// UnmarshalJSON decodes an RFC 3339 timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tt time.Time
	if err := tt.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tt)
	return nil
}
