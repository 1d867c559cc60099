package ports

import (
	"context"

	"gocondprob/domain/stats"
)

// ReportWriter persists a ranked analysis in a human-readable format
type ReportWriter interface {
	// WriteReport writes the analysis to dest. When appendTo is true and dest
	// exists, the report is added to it instead of replacing it.
	WriteReport(ctx context.Context, analysis *stats.Analysis, dest string, appendTo bool) error
}
