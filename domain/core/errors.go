package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)
	ErrBehaviorNotFound = fmt.Errorf("%w: behavior", ErrNotFound)

	// Precondition failures on caller-supplied input
	ErrInvalidEvent    = errors.New("invalid behavior event")
	ErrUnknownBehavior = errors.New("event references unknown behavior")
	ErrInvalidWindow   = errors.New("window must be a positive number of milliseconds")

	// ErrTooManyBackgroundEvents reports a background request that asks for more
	// events than there are unoccupied slots in the domain.
	ErrTooManyBackgroundEvents = errors.New("too many background events requested")
)

// NewInvalidEventError annotates ErrInvalidEvent with the offending field
func NewInvalidEventError(behavior BehaviorID, reason string) error {
	return fmt.Errorf("%w: behavior %s: %s", ErrInvalidEvent, behavior, reason)
}

// NewUnknownBehaviorError annotates ErrUnknownBehavior with the dangling identity
func NewUnknownBehaviorError(behavior BehaviorID) error {
	return fmt.Errorf("%w: %s", ErrUnknownBehavior, behavior)
}

// NewTooManyBackgroundEventsError reports requested versus available slots
func NewTooManyBackgroundEventsError(requested, available int) error {
	return fmt.Errorf("%w: requested %d, available %d", ErrTooManyBackgroundEvents, requested, available)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrUnknownBehavior) ||
		errors.Is(err, ErrInvalidWindow)
}

func IsInfeasibleError(err error) bool {
	return errors.Is(err, ErrTooManyBackgroundEvents)
}
