package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocondprob/domain/core"
	"gocondprob/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SessionReader = (*JSONReader)(nil)

const rawSession = `{
  "uuid": "0b7d4c3e-0000-4000-8000-000000000001",
  "schema": {
    "name": "St Peter",
    "behaviors": [
      {"uuid": "b-target", "key": "t", "description": "SIB", "isContinuous": false},
      {"uuid": "b-attn", "key": "a", "description": "Attention", "isContinuous": true}
    ]
  },
  "observer": "JT",
  "sessionNumber": 3,
  "duration": 600000,
  "discreteEvents": [{"behaviorUuid": "b-target", "time": 1000}, {"behaviorUuid": "b-target", "time": 9000}],
  "continuousEvents": [{"behaviorUuid": "b-attn", "startTime": 2000, "endTime": 5000}]
}`

func TestJSONReader_Decode(t *testing.T) {
	s, err := NewJSONReader().Decode(strings.NewReader(rawSession))
	require.NoError(t, err)

	assert.Equal(t, core.SessionID("0b7d4c3e-0000-4000-8000-000000000001"), s.ID)
	assert.Equal(t, "St Peter", s.Schema.Name)
	require.Len(t, s.Schema.Behaviors, 2)
	assert.True(t, s.Schema.Behaviors[1].Continuous)
	assert.Equal(t, 3, s.SessionNumber)
	assert.Equal(t, core.Millis(600000), s.Duration)
	require.Len(t, s.Discrete, 2)
	assert.Equal(t, core.Millis(9000), s.Discrete[1].Time)
	require.Len(t, s.Continuous, 1)
	assert.Equal(t, core.Millis(5000), s.Continuous[0].EndTime)
}

func TestJSONReader_Decode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{"malformed", `{"schema":`, func(err error) bool { return err != nil }},
		{"unknown behavior", `{"schema":{"behaviors":[]},"discreteEvents":[{"behaviorUuid":"x","time":1}]}`, core.IsValidationError},
		{"reversed span", `{"schema":{"behaviors":[{"uuid":"c","key":"c"}]},"continuousEvents":[{"behaviorUuid":"c","startTime":5,"endTime":1}]}`, core.IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSONReader().Decode(strings.NewReader(tt.input))
			if err == nil || !tt.check(err) {
				t.Errorf("Decode() error = %v", err)
			}
		})
	}
}

func TestJSONReader_ReadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.raw")
	require.NoError(t, os.WriteFile(path, []byte(rawSession), 0o644))

	s, err := NewJSONReader().ReadSession(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, s.Discrete, 2)

	_, err = NewJSONReader().ReadSession(context.Background(), filepath.Join(t.TempDir(), "missing.raw"))
	assert.True(t, core.IsNotFoundError(err))
}
