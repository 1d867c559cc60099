package testkit

import (
	"context"
	"slices"
	"sync"

	"gocondprob/adapters/rng"
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
	"gocondprob/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	repo *InMemoryAnalysisRepository // Shared repository instance
}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{repo: NewInMemoryAnalysisRepository()}
}

// RNGAdapter returns a deterministic RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewAdapter()
}

// Repository returns the shared in-memory analysis repository
func (t *TestKit) Repository() *InMemoryAnalysisRepository {
	return t.repo
}

// St Peter fixture behaviors
var (
	SIB       = behavior.KeyBehaviorMapping{ID: "a1f5c0de-0000-4000-8000-000000000001", Key: "s", Description: "SIB"}
	Attention = behavior.KeyBehaviorMapping{ID: "a1f5c0de-0000-4000-8000-000000000002", Key: "a", Description: "Attention", Continuous: true}
	Tangible  = behavior.KeyBehaviorMapping{ID: "a1f5c0de-0000-4000-8000-000000000003", Key: "g", Description: "Tangible", Continuous: true}
	Demand    = behavior.KeyBehaviorMapping{ID: "a1f5c0de-0000-4000-8000-000000000004", Key: "d", Description: "Demand"}
)

// StPeterSession is a 100 second session with SIB as the natural target.
// At a 5s window attention ranks first, then demand, then tangible.
func StPeterSession() *behavior.Session {
	s := &behavior.Session{
		ID:       "5e55104e-0000-4000-8000-000000000001",
		Schema:   behavior.Schema{Name: "St Peter", Behaviors: []behavior.KeyBehaviorMapping{SIB, Attention, Tangible, Demand}},
		Observer: "testkit",
		Duration: 100 * core.Second,
	}
	for _, t := range []core.Millis{10000, 24000, 25000, 29000, 30000, 53000, 66000, 68000, 71000, 81000} {
		s.Discrete = append(s.Discrete, behavior.DiscreteRecord{Behavior: SIB.ID, Time: t})
	}
	for _, t := range []core.Millis{12000, 27000, 55000} {
		s.Discrete = append(s.Discrete, behavior.DiscreteRecord{Behavior: Demand.ID, Time: t})
	}
	attention := []core.Millis{
		11000, 1000, 17000, 1000, 21000, 1000, 25001, 3000, 32000, 1000,
		34000, 5000, 40000, 1000, 42000, 1000, 45000, 2000, 50000, 2000,
		54000, 1000, 57000, 3000, 64000, 3000, 69000, 1000, 72000, 1000,
		81001, 2000,
	}
	for i := 0; i+1 < len(attention); i += 2 {
		s.Continuous = append(s.Continuous, behavior.ContinuousRecord{
			Behavior: Attention.ID, StartTime: attention[i], EndTime: attention[i] + attention[i+1],
		})
	}
	s.Continuous = append(s.Continuous,
		behavior.ContinuousRecord{Behavior: Tangible.ID, StartTime: 7000, EndTime: 14000},
		behavior.ContinuousRecord{Behavior: Tangible.ID, StartTime: 89000, EndTime: 96000},
	)
	return s
}

// InMemoryAnalysisRepository implements AnalysisRepository with in-memory storage
type InMemoryAnalysisRepository struct {
	analyses map[core.AnalysisID]*stats.Analysis
	order    []core.AnalysisID
	mu       sync.RWMutex
}

func NewInMemoryAnalysisRepository() *InMemoryAnalysisRepository {
	return &InMemoryAnalysisRepository{
		analyses: make(map[core.AnalysisID]*stats.Analysis),
	}
}

func (r *InMemoryAnalysisRepository) Save(ctx context.Context, a *stats.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = core.NewAnalysisID()
	}
	if _, exists := r.analyses[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	stored := *a
	stored.Candidates = slices.Clone(a.Candidates)
	r.analyses[a.ID] = &stored
	return nil
}

func (r *InMemoryAnalysisRepository) Get(ctx context.Context, id core.AnalysisID) (*stats.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analyses[id]
	if !ok {
		return nil, core.ErrAnalysisNotFound
	}
	out := *a
	return &out, nil
}

func (r *InMemoryAnalysisRepository) ListBySession(ctx context.Context, sessionID core.SessionID, limit int) ([]*stats.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*stats.Analysis
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.analyses[r.order[i]]
		if a.SessionID != sessionID {
			continue
		}
		copied := *a
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored analyses
func (r *InMemoryAnalysisRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyses)
}
