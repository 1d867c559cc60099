package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"gocondprob/adapters/stats/background"
	"gocondprob/adapters/stats/condprob"
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
	"gocondprob/internal/errors"
	"gocondprob/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisConfig tunes the analysis service
type AnalysisConfig struct {
	MaxConcurrency int         // candidates evaluated at once (default: 4)
	BaselineDraws  int         // background samples per candidate (default: 100)
	BaselineSeed   int64       // base seed for background streams
	BaselineStep   core.Millis // background slot spacing (default: 1s)
}

// DefaultAnalysisConfig returns the service defaults
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MaxConcurrency: 4,
		BaselineDraws:  100,
		BaselineSeed:   42,
		BaselineStep:   core.Second,
	}
}

// AnalysisService ranks every other behavior of a session as a consequence
// of a chosen target behavior
type AnalysisService struct {
	repo    ports.AnalysisRepository // nil disables persistence
	rngPort ports.RNGPort
	config  AnalysisConfig
}

// AnalysisRequest defines one ranking run
type AnalysisRequest struct {
	Session  *behavior.Session
	Source   string      // file the session was read from, for reports
	Target   string      // behavior identity or key
	Window   core.Millis // look-ahead after each target
	Baseline bool        // compare each candidate against random background targets
	Persist  bool        // store the analysis when a repository is configured
}

// BackgroundRequest asks for synthetic target events placed outside a
// consequence's intervals
type BackgroundRequest struct {
	Session     *behavior.Session
	Target      string
	Consequence string
	Events      int
	Complete    bool        // every free slot instead of a random sample
	Step        core.Millis // slot spacing (default: 1s)
	Seed        int64
}

// NewAnalysisService creates an analysis service. repo may be nil.
func NewAnalysisService(repo ports.AnalysisRepository, rngPort ports.RNGPort, config AnalysisConfig) *AnalysisService {
	defaults := DefaultAnalysisConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.BaselineDraws <= 0 {
		config.BaselineDraws = defaults.BaselineDraws
	}
	if config.BaselineStep <= 0 {
		config.BaselineStep = defaults.BaselineStep
	}
	return &AnalysisService{repo: repo, rngPort: rngPort, config: config}
}

// HasRepository reports whether analyses can be stored and fetched
func (s *AnalysisService) HasRepository() bool {
	return s.repo != nil
}

// Analyze computes the four measures for every candidate consequence and
// returns them ranked by descending average
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*stats.Analysis, error) {
	startTime := time.Now()

	if req.Session == nil {
		return nil, errors.InvalidInput("session is required")
	}
	if err := condprob.ValidateWindow(req.Window); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	target, err := req.Session.Schema.Resolve(req.Target)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	analysis := &stats.Analysis{
		ID:        core.NewAnalysisID(),
		SessionID: req.Session.ID,
		Source:    req.Source,
		Target:    target,
		Window:    req.Window,
		CreatedAt: core.Now(),
	}
	targets := condprob.TargetEvents(target, req.Session.Discrete, req.Session.Continuous)
	analysis.Targets = len(targets)

	behaviors := req.Session.Candidates(target.ID)
	candidates := make([]stats.Candidate, len(behaviors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for i, b := range behaviors {
		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			consequences := condprob.ConsequenceEvents(b, req.Session.Discrete, req.Session.Continuous)
			c := stats.Candidate{
				Behavior: b,
				Results:  condprob.All(targets, consequences, req.Window),
			}
			if req.Baseline {
				baseline, err := s.baseline(gctx, analysis, req.Session, targets, consequences, b, c.Results)
				if err != nil {
					return err
				}
				c.Baseline = baseline
			}
			candidates[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "candidate evaluation failed")
	}

	analysis.Candidates = stats.Rank(candidates)
	log.Printf("[AnalysisService] Ranked %d candidates for %s (%d targets, window %s) in %v",
		len(candidates), target.Label(), len(targets), req.Window, time.Since(startTime))

	if req.Persist && s.repo != nil {
		if err := s.repo.Save(ctx, analysis); err != nil {
			return nil, errors.DatabaseError("failed to save analysis", err)
		}
		log.Printf("[AnalysisService] Saved analysis %s", analysis.ID)
	}
	return analysis, nil
}

// baseline runs the background comparison for one candidate. A session too
// crowded for the requested number of background targets yields no baseline
// rather than failing the whole analysis.
func (s *AnalysisService) baseline(ctx context.Context, a *stats.Analysis, session *behavior.Session, targets, consequences []behavior.Event, b behavior.KeyBehaviorMapping, observed stats.AllResults) (*stats.Baseline, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	rng, err := s.rngPort.Stream(ctx, session.ID.String(), "baseline:"+a.Target.ID.String(), b.ID.String(), s.config.BaselineSeed)
	if err != nil {
		return nil, err
	}
	cfg := background.BaselineConfig{
		Draws:    s.config.BaselineDraws,
		Events:   len(targets),
		Duration: session.LastTime(),
		Step:     s.config.BaselineStep,
	}
	baseline, err := background.Baseline(ctx, rng, a.Target, consequences, a.Window, observed, cfg)
	if core.IsInfeasibleError(err) {
		log.Printf("[AnalysisService] Skipping baseline for %s: %v", b.Label(), err)
		return nil, nil
	}
	return baseline, err
}

// Background generates synthetic target events that avoid the consequence's
// intervals
func (s *AnalysisService) Background(ctx context.Context, req BackgroundRequest) ([]behavior.Event, error) {
	if req.Session == nil {
		return nil, errors.InvalidInput("session is required")
	}
	target, err := req.Session.Schema.Resolve(req.Target)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	consequence, err := req.Session.Schema.Resolve(req.Consequence)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if !req.Complete && req.Events < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("events must not be negative, got %d", req.Events))
	}
	step := req.Step
	if step <= 0 {
		step = s.config.BaselineStep
	}

	consequences := condprob.ConsequenceEvents(consequence, req.Session.Discrete, req.Session.Continuous)
	duration := req.Session.LastTime()
	if req.Complete {
		return background.Complete(target, consequences, duration, background.WithStep(step)), nil
	}

	rng, err := s.rngPort.SeededStream(ctx, "background", req.Seed)
	if err != nil {
		return nil, err
	}
	events, err := background.Random(rng, target, consequences, duration, req.Events, background.WithStep(step))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot place %d background events for %s", req.Events, consequence.Label())
	}
	log.Printf("[AnalysisService] Generated %d background events for %s avoiding %s",
		len(events), target.Label(), consequence.Label())
	return events, nil
}

// Get returns a stored analysis
func (s *AnalysisService) Get(ctx context.Context, id core.AnalysisID) (*stats.Analysis, error) {
	if s.repo == nil {
		return nil, errors.Unavailable("analysis storage is not configured")
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load analysis %s", id)
	}
	return a, nil
}

// ListBySession returns stored analyses of a session, newest first
func (s *AnalysisService) ListBySession(ctx context.Context, sessionID core.SessionID, limit int) ([]*stats.Analysis, error) {
	if s.repo == nil {
		return nil, errors.Unavailable("analysis storage is not configured")
	}
	list, err := s.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list analyses for session %s", sessionID)
	}
	return list, nil
}
