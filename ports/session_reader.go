package ports

import (
	"context"

	"gocondprob/domain/behavior"
)

// SessionReader decodes a recorded observation session from a file
type SessionReader interface {
	ReadSession(ctx context.Context, path string) (*behavior.Session, error)
}
