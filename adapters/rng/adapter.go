package rng

import (
	"context"
	"math/rand"
)

// Adapter implements ports.RNGPort with math/rand sources
type Adapter struct{}

// NewAdapter creates a seeded RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream derives the seed from analysisID + stageName + behaviorKey + baseSeed
func (a *Adapter) Stream(ctx context.Context, analysisID, stageName, behaviorKey string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := baseSeed
	if analysisID != "" {
		seed = int64(hashString(analysisID)) + seed
	}
	if stageName != "" {
		seed = int64(hashString(stageName)) + seed
	}
	if behaviorKey != "" {
		seed = int64(hashString(behaviorKey)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}
