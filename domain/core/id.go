package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	BehaviorID ID
	SessionID  ID
	AnalysisID ID
)

// String conversions for domain IDs
func (id BehaviorID) String() string { return ID(id).String() }
func (id SessionID) String() string  { return ID(id).String() }
func (id AnalysisID) String() string { return ID(id).String() }

// NewBehaviorID mints an identity for a new behavior type
func NewBehaviorID() BehaviorID { return BehaviorID(NewID()) }

// NewAnalysisID mints an identity for a stored analysis run
func NewAnalysisID() AnalysisID { return AnalysisID(NewID()) }

// ParseBehaviorID parses a string into BehaviorID
func ParseBehaviorID(s string) (BehaviorID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("behavior ID cannot be empty")
	}
	return BehaviorID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseAnalysisID parses a string into AnalysisID
func ParseAnalysisID(s string) (AnalysisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("analysis ID cannot be empty")
	}
	return AnalysisID(s), nil
}
