package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/deepresearch/models"
)

var (
	// ErrNotFound is returned for unknown plan ids.
	ErrNotFound = errors.New("plan_id not found")
	// ErrInvalidState is returned when running a plan that was never approved.
	ErrInvalidState = errors.New("plan not approved yet")
)

// Entry is one stored plan with its run state. The state is guarded by its own
// mutex; runs over the same plan are serialized by a separate run lock.
type Entry struct {
	Query string
	plan  models.Plan

	mu    sync.Mutex
	state models.RunState
	gen   uint64

	runMu sync.Mutex
}

func (e *Entry) Plan() models.Plan { return e.plan.Clone() }

// Snapshot returns a deep copy of the current run state.
func (e *Entry) Snapshot() models.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Update applies fn to the run state under the entry lock.
func (e *Entry) Update(fn func(*models.RunState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
}

// StartRun applies fn and opens a new run generation, superseding any run
// queued or in progress. It returns the new generation.
func (e *Entry) StartRun(fn func(*models.RunState)) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	fn(&e.state)
	return e.gen
}

// UpdateRun applies fn only while gen is the latest run generation and
// reports whether it did.
func (e *Entry) UpdateRun(gen uint64, fn func(*models.RunState)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return false
	}
	fn(&e.state)
	return true
}

func (e *Entry) AppendLog(entry models.LogEntry) {
	e.Update(func(s *models.RunState) { s.Logs = append(s.Logs, entry) })
}

// LockRun blocks until no other run of this plan is in progress and returns
// the matching unlock.
func (e *Entry) LockRun() func() {
	e.runMu.Lock()
	return e.runMu.Unlock
}

// Store keeps plans for the lifetime of the process.
type Store struct {
	entries map[string]*Entry
	mu      sync.RWMutex
	newID   func() string
}

func New() *Store {
	return &Store{entries: make(map[string]*Entry), newID: NewPlanID}
}

// NewPlanID returns the first 8 hex characters of a random UUID.
func NewPlanID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Create stores plan under a fresh id and returns it with PlanID set.
func (s *Store) Create(query string, plan models.Plan) models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	for {
		if _, taken := s.entries[id]; !taken {
			break
		}
		id = s.newID()
	}
	plan = plan.Clone()
	plan.PlanID = id
	s.entries[id] = &Entry{Query: query, plan: plan, state: models.RunState{Logs: []models.LogEntry{}}}
	return plan.Clone()
}

func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Store) Plan(id string) (models.Plan, error) {
	e, err := s.Get(id)
	if err != nil {
		return models.Plan{}, err
	}
	return e.Plan(), nil
}

// Approve marks the plan approved and records focus. Repeated approvals overwrite focus.
func (s *Store) Approve(id, focus string) error {
	e, err := s.Get(id)
	if err != nil {
		return err
	}
	e.Update(func(st *models.RunState) {
		st.Approved = true
		st.Focus = focus
	})
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
