package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
	"gocondprob/ports"

	"github.com/jmoiron/sqlx"
)

// AnalysisRepositoryImpl implements AnalysisRepository for PostgreSQL
type AnalysisRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

type analysisRow struct {
	ID                string `db:"id"`
	SessionID         string `db:"session_id"`
	Source            string `db:"source"`
	TargetID          string `db:"target_id"`
	TargetKey         string `db:"target_key"`
	TargetDescription string `db:"target_description"`
	TargetContinuous  bool   `db:"target_continuous"`
	WindowMillis      int64  `db:"window_ms"`
	Targets           int    `db:"targets"`
	CreatedAtMillis   int64  `db:"created_at_ms"`
}

type candidateRow struct {
	AnalysisID             string         `db:"analysis_id"`
	Ordinal                int            `db:"ordinal"`
	BehaviorID             string         `db:"behavior_id"`
	BehaviorKey            string         `db:"behavior_key"`
	BehaviorDescription    string         `db:"behavior_description"`
	BehaviorContinuous     bool           `db:"behavior_continuous"`
	BinaryEO               float64        `db:"binary_eo"`
	BinaryEOSampled        int            `db:"binary_eo_sampled"`
	BinaryEOTotal          int            `db:"binary_eo_total"`
	BinaryNonEO            float64        `db:"binary_non_eo"`
	BinaryNonEOSampled     int            `db:"binary_non_eo_sampled"`
	BinaryNonEOTotal       int            `db:"binary_non_eo_total"`
	ProportionEO           float64        `db:"proportion_eo"`
	ProportionEOSampled    int            `db:"proportion_eo_sampled"`
	ProportionEOTotal      int            `db:"proportion_eo_total"`
	ProportionNonEO        float64        `db:"proportion_non_eo"`
	ProportionNonEOSampled int            `db:"proportion_non_eo_sampled"`
	ProportionNonEOTotal   int            `db:"proportion_non_eo_total"`
	Avg                    float64        `db:"avg"`
	Baseline               sql.NullString `db:"baseline"`
}

const analysisColumns = `id, session_id, source, target_id, target_key, target_description,
	target_continuous, window_ms, targets, created_at_ms`

const candidateColumns = `analysis_id, ordinal, behavior_id, behavior_key, behavior_description,
	behavior_continuous, binary_eo, binary_eo_sampled, binary_eo_total,
	binary_non_eo, binary_non_eo_sampled, binary_non_eo_total,
	proportion_eo, proportion_eo_sampled, proportion_eo_total,
	proportion_non_eo, proportion_non_eo_sampled, proportion_non_eo_total, avg, baseline`

// Save inserts the analysis and its ranked candidates in one transaction
func (r *AnalysisRepositoryImpl) Save(ctx context.Context, a *stats.Analysis) error {
	if a.ID == "" {
		a.ID = core.NewAnalysisID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.Now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (:id, :session_id, :source, :target_id, :target_key, :target_description,
			:target_continuous, :window_ms, :targets, :created_at_ms)
	`, toAnalysisRow(a))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	for i, c := range a.Candidates {
		row, err := toCandidateRow(a.ID, i, c)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO analysis_candidates (`+candidateColumns+`)
			VALUES (:analysis_id, :ordinal, :behavior_id, :behavior_key, :behavior_description,
				:behavior_continuous, :binary_eo, :binary_eo_sampled, :binary_eo_total,
				:binary_non_eo, :binary_non_eo_sampled, :binary_non_eo_total,
				:proportion_eo, :proportion_eo_sampled, :proportion_eo_total,
				:proportion_non_eo, :proportion_non_eo_sampled, :proportion_non_eo_total, :avg, :baseline)
		`, row)
		if err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", c.Behavior.Key, err)
		}
	}
	return tx.Commit()
}

// Get retrieves an analysis with its candidates in rank order
func (r *AnalysisRepositoryImpl) Get(ctx context.Context, id core.AnalysisID) (*stats.Analysis, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+analysisColumns+` FROM analyses WHERE id = ?`), string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrAnalysisNotFound, id)
		}
		return nil, err
	}
	return r.load(ctx, row)
}

// ListBySession returns the session's analyses, newest first
func (r *AnalysisRepositoryImpl) ListBySession(ctx context.Context, sessionID core.SessionID, limit int) ([]*stats.Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []analysisRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+analysisColumns+`
		FROM analyses
		WHERE session_id = ?
		ORDER BY created_at_ms DESC, id DESC
		LIMIT ?
	`), string(sessionID), limit)
	if err != nil {
		return nil, err
	}

	out := make([]*stats.Analysis, 0, len(rows))
	for _, row := range rows {
		a, err := r.load(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AnalysisRepositoryImpl) load(ctx context.Context, row analysisRow) (*stats.Analysis, error) {
	var rows []candidateRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+candidateColumns+`
		FROM analysis_candidates
		WHERE analysis_id = ?
		ORDER BY ordinal
	`), row.ID)
	if err != nil {
		return nil, err
	}

	a := &stats.Analysis{
		ID:        core.AnalysisID(row.ID),
		SessionID: core.SessionID(row.SessionID),
		Source:    row.Source,
		Target: behavior.KeyBehaviorMapping{
			ID:          core.BehaviorID(row.TargetID),
			Key:         row.TargetKey,
			Description: row.TargetDescription,
			Continuous:  row.TargetContinuous,
		},
		Window:     core.Millis(row.WindowMillis),
		Targets:    row.Targets,
		Candidates: make([]stats.Candidate, 0, len(rows)),
		CreatedAt:  core.Timestamp(time.UnixMilli(row.CreatedAtMillis)),
	}
	for _, cr := range rows {
		c, err := fromCandidateRow(cr)
		if err != nil {
			return nil, err
		}
		a.Candidates = append(a.Candidates, c)
	}
	return a, nil
}

func toAnalysisRow(a *stats.Analysis) analysisRow {
	return analysisRow{
		ID:                string(a.ID),
		SessionID:         string(a.SessionID),
		Source:            a.Source,
		TargetID:          string(a.Target.ID),
		TargetKey:         a.Target.Key,
		TargetDescription: a.Target.Description,
		TargetContinuous:  a.Target.Continuous,
		WindowMillis:      int64(a.Window),
		Targets:           a.Targets,
		CreatedAtMillis:   a.CreatedAt.Time().UnixMilli(),
	}
}

func toCandidateRow(analysisID core.AnalysisID, ordinal int, c stats.Candidate) (candidateRow, error) {
	row := candidateRow{
		AnalysisID:             string(analysisID),
		Ordinal:                ordinal,
		BehaviorID:             string(c.Behavior.ID),
		BehaviorKey:            c.Behavior.Key,
		BehaviorDescription:    c.Behavior.Description,
		BehaviorContinuous:     c.Behavior.Continuous,
		BinaryEO:               c.Results.BinaryEO.Probability,
		BinaryEOSampled:        c.Results.BinaryEO.Sampled,
		BinaryEOTotal:          c.Results.BinaryEO.Total,
		BinaryNonEO:            c.Results.BinaryNonEO.Probability,
		BinaryNonEOSampled:     c.Results.BinaryNonEO.Sampled,
		BinaryNonEOTotal:       c.Results.BinaryNonEO.Total,
		ProportionEO:           c.Results.ProportionEO.Probability,
		ProportionEOSampled:    c.Results.ProportionEO.Sampled,
		ProportionEOTotal:      c.Results.ProportionEO.Total,
		ProportionNonEO:        c.Results.ProportionNonEO.Probability,
		ProportionNonEOSampled: c.Results.ProportionNonEO.Sampled,
		ProportionNonEOTotal:   c.Results.ProportionNonEO.Total,
		Avg:                    c.Results.Avg,
	}
	if c.Baseline != nil {
		baselineJSON, err := json.Marshal(c.Baseline)
		if err != nil {
			return row, fmt.Errorf("failed to encode baseline: %w", err)
		}
		row.Baseline = sql.NullString{String: string(baselineJSON), Valid: true}
	}
	return row, nil
}

func fromCandidateRow(row candidateRow) (stats.Candidate, error) {
	c := stats.Candidate{
		Behavior: behavior.KeyBehaviorMapping{
			ID:          core.BehaviorID(row.BehaviorID),
			Key:         row.BehaviorKey,
			Description: row.BehaviorDescription,
			Continuous:  row.BehaviorContinuous,
		},
		Results: stats.AllResults{
			BinaryEO:        stats.NewResults(row.BinaryEO, row.BinaryEOSampled, row.BinaryEOTotal),
			BinaryNonEO:     stats.NewResults(row.BinaryNonEO, row.BinaryNonEOSampled, row.BinaryNonEOTotal),
			ProportionEO:    stats.NewResults(row.ProportionEO, row.ProportionEOSampled, row.ProportionEOTotal),
			ProportionNonEO: stats.NewResults(row.ProportionNonEO, row.ProportionNonEOSampled, row.ProportionNonEOTotal),
			Avg:             row.Avg,
		},
	}
	if row.Baseline.Valid {
		var b stats.Baseline
		if err := json.Unmarshal([]byte(row.Baseline.String), &b); err != nil {
			return c, fmt.Errorf("failed to decode baseline: %w", err)
		}
		c.Baseline = &b
	}
	return c, nil
}
