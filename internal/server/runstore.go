package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jessibug-os/EstraDial/internal/improvement"
	"github.com/jessibug-os/EstraDial/pkg/utils"
)

// RunStatus is the lifecycle state of an optimization run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunView is an immutable snapshot of one run, safe to serialize.
type RunView struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Cycle     string     `json:"cycle"`
	CreatedAt time.Time  `json:"created_at"`
	Percent   float64    `json:"percent"`
	Score     float64    `json:"score"`
	Iteration int        `json:"iteration"`
	Error     string     `json:"error,omitempty"`
	Result    *runResult `json:"result,omitempty"`
}

type runResult struct {
	Doses      []doseView `json:"doses"`
	Score      float64    `json:"score"`
	Iterations int        `json:"iterations"`
	Converged  bool       `json:"converged"`
	Reason     string     `json:"reason"`
}

type doseView struct {
	Day        int     `json:"day"`
	AmountMg   float64 `json:"amount_mg"`
	Medication string  `json:"medication"`
}

type runRecord struct {
	view   RunView
	cancel context.CancelFunc
}

// RunStore tracks optimization runs in memory.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*runRecord
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*runRecord)}
}

// Create registers a pending run and returns its ID.
func (s *RunStore) Create(cycle string, cancel context.CancelFunc) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := utils.GenerateRunID()
	for s.runs[id] != nil {
		id = utils.GenerateRunID()
	}
	s.runs[id] = &runRecord{
		view: RunView{
			ID:        id,
			Status:    RunStatusPending,
			Cycle:     cycle,
			CreatedAt: time.Now().UTC(),
		},
		cancel: cancel,
	}
	return id
}

// Get returns a snapshot of the run.
func (s *RunStore) Get(id string) (RunView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return RunView{}, false
	}
	return rec.view, true
}

// List returns snapshots of up to limit runs.
func (s *RunStore) List(limit int) []RunView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]RunView, 0, min(limit, len(s.runs)))
	for _, rec := range s.runs {
		out = append(out, rec.view)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SetRunning marks the run as started.
func (s *RunStore) SetRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		rec.view.Status = RunStatusRunning
	}
}

// SetProgress updates the live progress fields of a run.
func (s *RunStore) SetProgress(id string, percent, score float64, iteration int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		rec.view.Percent = percent
		rec.view.Score = score
		rec.view.Iteration = iteration
	}
}

// SetResult stores the run outcome and transitions it to a terminal state.
func (s *RunStore) SetResult(id string, status RunStatus, res *improvement.Result, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[id]
	if !ok {
		return
	}
	rec.view.Status = status
	rec.view.Error = errMsg
	if res == nil {
		return
	}
	doses := make([]doseView, len(res.Doses))
	for i, d := range res.Doses {
		doses[i] = doseView{Day: d.Day, AmountMg: d.AmountMg, Medication: d.Medication.Name}
	}
	rec.view.Percent = 100
	rec.view.Score = res.Score
	rec.view.Iteration = res.Iterations
	rec.view.Result = &runResult{
		Doses:      doses,
		Score:      res.Score,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Reason:     res.Reason,
	}
}

// Cancel requests cooperative cancellation of a run. It is not an error to
// cancel a run that already finished.
func (s *RunStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}
	if rec.cancel != nil {
		rec.cancel()
	}
	return nil
}
