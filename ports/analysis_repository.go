package ports

import (
	"context"

	"gocondprob/domain/core"
	"gocondprob/domain/stats"
)

// AnalysisRepository stores ranked analyses
type AnalysisRepository interface {
	// Save inserts the analysis and its candidates
	Save(ctx context.Context, analysis *stats.Analysis) error

	// Get returns the analysis, or core.ErrAnalysisNotFound
	Get(ctx context.Context, id core.AnalysisID) (*stats.Analysis, error)

	// ListBySession returns analyses of a session, newest first
	ListBySession(ctx context.Context, sessionID core.SessionID, limit int) ([]*stats.Analysis, error)
}
