package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
)

// JSONReader decodes the raw session format written by the recorder
type JSONReader struct{}

// NewJSONReader creates a raw session reader
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// ReadSession opens and decodes a raw session file
func (r *JSONReader) ReadSession(ctx context.Context, path string) (*behavior.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session file %s: %w", path, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	s, err := r.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("[SessionReader] Loaded %s (%d behaviors, %d discrete, %d continuous)",
		path, len(s.Schema.Behaviors), len(s.Discrete), len(s.Continuous))
	return s, nil
}

// Decode reads one session document from r and validates it
func (r *JSONReader) Decode(in io.Reader) (*behavior.Session, error) {
	var s behavior.Session
	if err := json.NewDecoder(in).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
