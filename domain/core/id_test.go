package core

import (
	"errors"
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseBehaviorID(t *testing.T) {
	if _, err := ParseBehaviorID("  "); err == nil {
		t.Error("Expected error for blank behavior ID")
	}
	id, err := ParseBehaviorID("b1")
	if err != nil {
		t.Fatalf("ParseBehaviorID failed: %v", err)
	}
	if id.String() != "b1" {
		t.Errorf("Expected 'b1', got '%s'", id)
	}
}

func TestMillisString(t *testing.T) {
	tests := []struct {
		in   Millis
		want string
	}{
		{0, "00:00.000"},
		{2800, "00:02.800"},
		{35*60*Second + 4000, "35:04.000"},
		{-1500, "-00:01.500"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Millis(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestMillisConversions(t *testing.T) {
	if got := MillisFromSeconds(10); got != Window10s {
		t.Errorf("Expected %d, got %d", Window10s, got)
	}
	if got := MillisFromDuration(1500 * time.Millisecond); got != 1500 {
		t.Errorf("Expected 1500, got %d", got)
	}
	if got := Millis(2500).Seconds(); got != 2.5 {
		t.Errorf("Expected 2.5, got %f", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewTooManyBackgroundEventsError(5, 4)
	if !IsInfeasibleError(err) {
		t.Errorf("Expected infeasible error, got %v", err)
	}
	if !errors.Is(NewUnknownBehaviorError("x"), ErrUnknownBehavior) {
		t.Error("Expected unknown behavior error to wrap sentinel")
	}
	if !IsValidationError(NewInvalidEventError("x", "negative duration")) {
		t.Error("Expected invalid event to be a validation error")
	}
	if !IsNotFoundError(ErrAnalysisNotFound) {
		t.Error("Expected analysis not found to be a not-found error")
	}
}
