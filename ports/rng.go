package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one analysis/stage/behavior.
	// Identical arguments yield identical background draws across runs.
	Stream(ctx context.Context, analysisID, stageName, behaviorKey string, baseSeed int64) (*rand.Rand, error)
}
